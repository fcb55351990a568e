package textutil

import "testing"

func TestFold_StripsAccentsAndCase(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Présent ": "present",
		"CONGÉ":      "conge",
		"Repos_méd":  "repos_med",
		"":           "",
		"déjà vu":    "deja vu",
	}
	for input, want := range cases {
		if got := Fold(input); got != want {
			t.Errorf("Fold(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeToken_KeepsLettersAndDigitsOnly(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Taux_Logement": "tauxlogement",
		"taux logement": "tauxlogement",
		"TAUX-LOGEMENT": "tauxlogement",
		"Prénom ":       "prenom",
		"N° 12":         "n12",
	}
	for input, want := range cases {
		if got := NormalizeToken(input); got != want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}
