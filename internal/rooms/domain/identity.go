package domain

import (
	"math/rand/v2"
	"strconv"
)

// Identity is a requester as resolved by the external identity provider.
type Identity struct {
	// Subject is the stable identity string, empty for anonymous requesters.
	Subject string
	// Name is the display name, when the provider supplies one.
	Name string
	// Groups lists the group memberships of the subject.
	Groups []string
	// Anonymous marks a requester with no stable identity.
	Anonymous bool
}

// AnonymousIdentity returns an identity with no subject or grants.
func AnonymousIdentity() Identity {
	return Identity{Anonymous: true}
}

// DisplayName returns the identity's name, falling back to its subject.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Subject
}

// AnonymousDisplayName generates a throwaway display identity for anonymous
// participants of open rooms, e.g. "amber-falcon-42".
func AnonymousDisplayName() string {
	adjective := displayAdjectives[rand.IntN(len(displayAdjectives))]
	noun := displayNouns[rand.IntN(len(displayNouns))]
	return adjective + "-" + noun + "-" + strconv.Itoa(rand.IntN(90)+10)
}
