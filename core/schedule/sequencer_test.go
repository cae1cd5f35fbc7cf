package schedule

import "testing"

func TestGenerateSemesters(t *testing.T) {
	tests := []struct {
		name      string
		startYear int
		firstTerm string
		count     int
		wantIDs   []string
	}{
		{
			name:      "wraps the term cycle across years",
			startYear: 2025,
			firstTerm: "Fall",
			count:     5,
			wantIDs:   []string{"2025-Fall", "2025-Winter", "2026-Spring", "2026-Summer", "2026-Fall"},
		},
		{
			name:      "full cycle from the first term",
			startYear: 2024,
			firstTerm: "Spring",
			count:     4,
			wantIDs:   []string{"2024-Spring", "2024-Summer", "2024-Fall", "2024-Winter"},
		},
		{
			name:      "unknown term falls back to the first term",
			startYear: 2025,
			firstTerm: "Autumn",
			count:     2,
			wantIDs:   []string{"2025-Spring", "2025-Summer"},
		},
		{
			name:      "zero count",
			startYear: 2025,
			firstTerm: "Fall",
			count:     0,
			wantIDs:   []string{},
		},
		{
			name:      "negative count",
			startYear: 2025,
			firstTerm: "Fall",
			count:     -3,
			wantIDs:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateSemesters(tt.startYear, tt.firstTerm, tt.count)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("GenerateSemesters() returned %d semesters, want %d", len(got), len(tt.wantIDs))
			}
			for i, sem := range got {
				if sem.ID != tt.wantIDs[i] {
					t.Errorf("semester[%d].ID = %q, want %q", i, sem.ID, tt.wantIDs[i])
				}
				if wantID := semesterID(sem.Year, sem.Name); sem.ID != wantID {
					t.Errorf("semester[%d] id/fields mismatch: %q vs year=%d name=%q", i, sem.ID, sem.Year, sem.Name)
				}
				if len(sem.Classes) != 0 {
					t.Errorf("semester[%d] starts with %d classes, want none", i, len(sem.Classes))
				}
			}
		})
	}
}

func semesterID(year int, name string) string {
	return GenerateSemesters(year, name, 1)[0].ID
}

func TestParseSemesterID(t *testing.T) {
	tests := []struct {
		id       string
		wantYear int
		wantName string
		wantErr  bool
	}{
		{id: "2025-Fall", wantYear: 2025, wantName: "Fall"},
		{id: "2026-Mini-mester", wantYear: 2026, wantName: "Mini-mester"},
		{id: "nonsense", wantErr: true},
		{id: "Fall-2025", wantErr: true},
		{id: "2025-", wantErr: true},
		{id: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			year, name, err := ParseSemesterID(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSemesterID(%q) error = nil, want ErrInvalidSemesterID", tt.id)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSemesterID(%q) error = %v", tt.id, err)
			}
			if year != tt.wantYear || name != tt.wantName {
				t.Errorf("ParseSemesterID(%q) = (%d, %q), want (%d, %q)", tt.id, year, name, tt.wantYear, tt.wantName)
			}
		})
	}
}

func TestSemesterCode(t *testing.T) {
	tests := []struct {
		year int
		name string
		want string
	}{
		{2025, "Fall", "f25"},
		{2026, "Winter", "w26"},
		{2024, "Spring", "s24"},
		{999, "Fall", "f99"},
		{2025, "", ""},
	}
	for _, tt := range tests {
		if got := SemesterCode(tt.year, tt.name); got != tt.want {
			t.Errorf("SemesterCode(%d, %q) = %q, want %q", tt.year, tt.name, got, tt.want)
		}
	}
}
