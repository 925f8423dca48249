package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases and collapses whitespace",
			in:   "Dolor   Abdominal",
			want: "dolor abdominal",
		},
		{
			name: "strips punctuation",
			in:   "Dolor Abdominal!",
			want: "dolor abdominal",
		},
		{
			name: "strips diacritics",
			in:   "¿Tiene náuseas o vómitos?",
			want: "tiene nauseas vomitos",
		},
		{
			name: "drops stop words",
			in:   "dolor en el pecho y la espalda",
			want: "dolor pecho espalda",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "only punctuation and stop words",
			in:   "¿¡... y el de la!?",
			want: "",
		},
		{
			name: "english stop words",
			in:   "Pain in the chest and the back",
			want: "pain chest back",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	pairs := [][2]string{
		{"Dolor Abdominal!", "dolor   abdominal"},
		{"¿Tiene alergias?", "tiene  alergias?!"},
		{"Hipótesis", "hipotesis"},
	}

	for _, p := range pairs {
		if Normalize(p[0]) != Normalize(p[1]) {
			t.Errorf("expected %q and %q to share a key, got %q vs %q",
				p[0], p[1], Normalize(p[0]), Normalize(p[1]))
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"Dolor Abdominal!", "¿Tiene  alergias?", "simple"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}
