package testkit

import "testing"

func TestCheckLinewise(t *testing.T) {
	tests := []struct {
		name    string
		before  string
		after   string
		want    int
		wantErr bool
	}{
		{"unchanged", "a\nb\n", "a\nb\n", 0, false},
		{"commented", "  a: one(x),\n  b\n", "  // a: one(x),\n  b\n", 1, false},
		{"deeper indent", "  a: one(x, {\n      y\n  }),\n", "  // a: one(x, {\n  //     y\n  // }),\n", 3, false},
		{"crlf", "  a,\r\nb\r\n", "  // a,\r\nb\r\n", 1, false},
		{"line added", "a\n", "a\nb\n", 0, true},
		{"edited", "  a: one(x),\n", "  // a: one(y),\n", 0, true},
		{"no marker", "a\n", "b\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckLinewise([]byte(tt.before), []byte(tt.after), "// ")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("commented = %d, want %d", got, tt.want)
			}
		})
	}
}
