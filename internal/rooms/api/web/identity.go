package web

import (
	"net/http"
	"strings"

	"github.com/louisbranch/gather.space/internal/rooms/domain"
)

// Gateway headers carrying the resolved requester identity. An absent or
// blank subject marks the requester anonymous.
const (
	HeaderSubject = "X-Gather-Subject"
	HeaderName    = "X-Gather-Name"
	HeaderGroups  = "X-Gather-Groups"
)

// ResolveIdentity reads the requester identity from the gateway headers.
func ResolveIdentity(r *http.Request) domain.Identity {
	subject := strings.TrimSpace(r.Header.Get(HeaderSubject))
	if subject == "" {
		return domain.AnonymousIdentity()
	}
	return domain.Identity{
		Subject: subject,
		Name:    strings.TrimSpace(r.Header.Get(HeaderName)),
		Groups:  splitGroups(r.Header.Get(HeaderGroups)),
	}
}

func splitGroups(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var groups []string
	for _, group := range strings.Split(raw, ",") {
		group = strings.TrimSpace(group)
		if group != "" {
			groups = append(groups, group)
		}
	}
	return groups
}
