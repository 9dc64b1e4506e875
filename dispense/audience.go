/*
audience.go - Target-audience filtering for dispense candidates

PURPOSE:
  A medication may carry a target-member list restricting who in the
  household it applies to. An absent/empty list means everyone.

WHERE THIS APPLIES:
  Only on the "what should this device dispense for this member" path.
  Schedule-viewing endpoints intentionally show all household doses; the
  dispensing path shows only doses applicable to the authenticated member.
  The two paths differ on purpose.
*/
package dispense

// IsRecipient reports whether a member is an intended recipient given a
// medication's target list. A nil or empty list applies to every member
// of the household.
func IsRecipient(targets []MemberID, member MemberID) bool {
	if len(targets) == 0 {
		return true
	}
	for _, t := range targets {
		if t == member {
			return true
		}
	}
	return false
}

// FilterForMember keeps only the due doses whose medication audience
// includes the given member. Order is preserved.
func FilterForMember(doses []DueDose, member MemberID) []DueDose {
	out := make([]DueDose, 0, len(doses))
	for _, d := range doses {
		if IsRecipient(d.Targets, member) {
			out = append(out, d)
		}
	}
	return out
}
