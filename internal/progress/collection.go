package progress

// Index returns the position of the record for challengeID, or -1.
func Index(records []Record, challengeID int64) int {
	for i := range records {
		if records[i].ChallengeID == challengeID {
			return i
		}
	}
	return -1
}

// Remove drops the record for challengeID and returns it.
func Remove(records []Record, challengeID int64) ([]Record, Record, error) {
	i := Index(records, challengeID)
	if i < 0 {
		return records, Record{}, ErrNotEnrolled
	}
	removed := records[i]
	out := make([]Record, 0, len(records)-1)
	out = append(out, records[:i]...)
	out = append(out, records[i+1:]...)
	return out, removed, nil
}

// Put replaces the record with the same challenge id or appends it.
func Put(records []Record, r Record) []Record {
	out := append([]Record(nil), records...)
	if i := Index(out, r.ChallengeID); i >= 0 {
		out[i] = r
		return out
	}
	return append(out, r)
}

// Diff lists what a store has to write to turn before into after.
func Diff(before, after []Record) (upserts []Record, deletes []int64) {
	for _, r := range after {
		i := Index(before, r.ChallengeID)
		if i < 0 || !before[i].Equal(r) {
			upserts = append(upserts, r)
		}
	}
	for _, r := range before {
		if Index(after, r.ChallengeID) < 0 {
			deletes = append(deletes, r.ChallengeID)
		}
	}
	return upserts, deletes
}
