package wiki

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "My Notes", "my-notes"},
		{"already a slug", "my-notes", "my-notes"},
		{"mixed case", "ReadMe FIRST", "readme-first"},
		{"punctuation runs", "Hello,   World!!", "hello-world"},
		{"leading and trailing junk", "  --Hello--  ", "hello"},
		{"digits survive", "Plan 9 from Bell Labs", "plan-9-from-bell-labs"},
		{"unicode collapses", "caffè münchen", "caff-m-nchen"},
		{"nothing usable", "!!! ???", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		taken []string
		want  string
	}{
		{"free base", "my-notes", nil, "my-notes"},
		{"first collision", "my-notes", []string{"my-notes"}, "my-notes-2"},
		{"second collision", "my-notes", []string{"my-notes", "my-notes-2"}, "my-notes-3"},
		{"gap is reused", "my-notes", []string{"my-notes", "my-notes-3"}, "my-notes-2"},
		{"suffixed page does not block base", "my-notes", []string{"my-notes-2"}, "my-notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := make(map[string]bool, len(tt.taken))
			for _, s := range tt.taken {
				taken[s] = true
			}
			if got := UniqueSlug(tt.base, taken); got != tt.want {
				t.Errorf("UniqueSlug(%q, %v) = %q, want %q", tt.base, tt.taken, got, tt.want)
			}
		})
	}
}
