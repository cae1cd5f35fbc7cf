package schedule

import "fmt"

// GenerateSemesters deterministically expands (startYear, firstTerm, count)
// into an ordered semester skeleton. An unknown firstTerm silently falls back
// to the sequence's first entry; count <= 0 yields an empty slice.
func GenerateSemesters(startYear int, firstTerm string, count int) []Semester {
	startIndex := 0
	for i, name := range TermSequence {
		if name == firstTerm {
			startIndex = i
			break
		}
	}

	if count < 0 {
		count = 0
	}
	semesters := make([]Semester, 0, count)
	for i := 0; i < count; i++ {
		sequenceIndex := (startIndex + i) % len(TermSequence)
		cycle := (startIndex + i) / len(TermSequence)
		year := startYear + cycle
		name := TermSequence[sequenceIndex]
		semesters = append(semesters, Semester{
			ID:   fmt.Sprintf("%d-%s", year, name),
			Name: name,
			Year: year,
		})
	}
	return semesters
}
