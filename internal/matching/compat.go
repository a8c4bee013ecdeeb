package matching

// compatibleDonorTypes maps a recipient blood type to the donor types whose
// blood it can receive.
var compatibleDonorTypes = map[string][]string{
	"O-":  {"O-"},
	"O+":  {"O+", "O-"},
	"A-":  {"A-", "O-"},
	"A+":  {"A+", "A-", "O+", "O-"},
	"B-":  {"B-", "O-"},
	"B+":  {"B+", "B-", "O+", "O-"},
	"AB-": {"AB-", "A-", "B-", "O-"},
	"AB+": {"AB+", "AB-", "A+", "A-", "B+", "B-", "O+", "O-"},
}

// CompatibleDonorTypes returns the donor blood types compatible with the
// recipient type, or nil for an unknown type.
func CompatibleDonorTypes(recipient string) []string {
	return compatibleDonorTypes[recipient]
}
