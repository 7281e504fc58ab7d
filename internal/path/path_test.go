package path

import "testing"

func TestNormalise(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"tech/book.pdf", "tech/book.pdf", false},
		{"tech/book.PDF", "tech/book.PDF", false},

		{"tech/sub/paper.pdf", "tech/sub/paper.pdf", false},

		{"/tech/book.pdf", "tech/book.pdf", false},
		{"tech/book.pdf/", "tech/book.pdf", false},
		{"/tech/book.pdf/", "tech/book.pdf", false},

		{"tech/../secret.pdf", "secret.pdf", false},

		{"", "", true},
		{".", "", true},
		{"..", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalise(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalise(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("Normalise(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDirect(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"tech/book.pdf", "tech", true},
		{"tech/sub/paper.pdf", "tech", false},

		{"tech", "tech", true},

		{"book.pdf", "", true},
		{"tech/book.pdf", "", false},

		{"tech/book.pdf", "tech/", true},

		{"tech/book.pdf", "tech\\", true},
		{"tech/sub/paper.pdf", "tech\\sub", true},

		{"notes/meeting.pdf", "tech", false},
	}

	for _, tt := range tests {
		name := tt.path + "_" + tt.prefix
		t.Run(name, func(t *testing.T) {
			got := Direct(tt.path, tt.prefix)
			if got != tt.want {
				t.Errorf("Direct(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
			}
		})
	}
}
