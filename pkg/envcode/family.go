package envcode

import "strings"

type Family string

const (
	FamilyDisposal    Family = "disposalcode"
	FamilyRecovery    Family = "recoverycode"
	FamilyListOfWaste Family = "lowcode"
)

var families = map[Family]func(string) (string, bool){
	FamilyDisposal:    RecognizeDisposalCode,
	FamilyRecovery:    RecognizeRecoveryCode,
	FamilyListOfWaste: RecognizeListOfWasteCode,
}

// Families lists the supported families in a stable order.
func Families() []Family {
	return []Family{FamilyDisposal, FamilyRecovery, FamilyListOfWaste}
}

// ParseFamily lowercases name and matches it against the known families.
func ParseFamily(name string) (Family, bool) {
	f := Family(strings.ToLower(name))
	if _, ok := families[f]; !ok {
		return "", false
	}
	return f, true
}

func (f Family) Recognize(text string) (string, bool) {
	recognize, ok := families[f]
	if !ok {
		return "", false
	}
	return recognize(text)
}

func (f Family) String() string {
	return string(f)
}
