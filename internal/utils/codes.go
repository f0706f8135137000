package utils

import (
	"fmt"
	"time"
)

// Sequence code kinds. The prefix doubles as the counter key so each kind
// numbers independently per calendar day.
const (
	CodeKindUpgradeRequest     = "NC"
	CodeKindUpgradeTransaction = "GDNC"
	CodeKindPurchaseTransaction = "GDDH"

	SequenceDateLayout = "060102"
)

// FormatSequenceCode renders <PREFIX><YYMMDD><NNNNN>, e.g. GDNC24083000001.
// Codes round-trip through transaction confirmation, so the format is part of
// the external contract.
func FormatSequenceCode(kind string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%05d", kind, day.Format(SequenceDateLayout), seq)
}

// SequenceKey is the counter document id for a kind on a calendar day.
func SequenceKey(kind string, day time.Time) string {
	return kind + ":" + day.Format(SequenceDateLayout)
}
