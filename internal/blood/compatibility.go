// Package blood holds the ABO/Rh compatibility rules used for donor matching.
package blood

// The eight ABO/Rh blood types.
const (
	APositive  = "A+"
	ANegative  = "A-"
	BPositive  = "B+"
	BNegative  = "B-"
	ABPositive = "AB+"
	ABNegative = "AB-"
	OPositive  = "O+"
	ONegative  = "O-"
)

// Types lists all known blood types.
var Types = []string{
	APositive, ANegative,
	BPositive, BNegative,
	ABPositive, ABNegative,
	OPositive, ONegative,
}

// compatibleDonors maps a requested blood type to the donor types whose
// blood the recipient can accept. O- donates to everyone, AB+ accepts
// everyone.
var compatibleDonors = map[string][]string{
	APositive:  {APositive, ANegative, OPositive, ONegative},
	ANegative:  {ANegative, ONegative},
	BPositive:  {BPositive, BNegative, OPositive, ONegative},
	BNegative:  {BNegative, ONegative},
	ABPositive: {APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative},
	ABNegative: {ANegative, BNegative, ABNegative, ONegative},
	OPositive:  {OPositive, ONegative},
	ONegative:  {ONegative},
}

// CompatibleDonorTypes returns the donor blood types acceptable for the
// requested type, in a stable order. Unknown types degrade to an exact
// match so a lookup never comes back empty.
func CompatibleDonorTypes(requested string) []string {
	donors, exists := compatibleDonors[requested]
	if !exists {
		return []string{requested}
	}
	out := make([]string, len(donors))
	copy(out, donors)
	return out
}

// IsValidType reports whether t is one of the eight ABO/Rh types.
func IsValidType(t string) bool {
	_, exists := compatibleDonors[t]
	return exists
}

// CanDonate reports whether blood of donorType can be given to a
// recipient of recipientType.
func CanDonate(donorType, recipientType string) bool {
	for _, d := range CompatibleDonorTypes(recipientType) {
		if d == donorType {
			return true
		}
	}
	return false
}
