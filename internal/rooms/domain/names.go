package domain

// Display name components - adjective + noun combinations.
var displayAdjectives = []string{
	"amber", "ashen", "bright", "brisk", "calm",
	"cobalt", "crimson", "eager", "gentle", "golden",
	"hollow", "jade", "keen", "lively", "mellow",
	"quiet", "silver", "swift", "verdant", "witty",
}

var displayNouns = []string{
	"falcon", "heron", "otter", "badger", "lynx",
	"sparrow", "marten", "osprey", "wren", "fox",
	"ibis", "tern", "stoat", "plover", "finch",
	"raven", "swallow", "kestrel", "dove", "crane",
}
