package clients

import "testing"

func TestIsValidCPF(t *testing.T) {
	valid := []string{
		"11122233344",
		"111.222.333-44",
		"111 222 333 44",
		"cpf: 111.222.333-44",
	}
	for _, s := range valid {
		if !IsValidCPF(s) {
			t.Errorf("IsValidCPF(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"1112223334",      // 10 dígitos
		"111222333445",    // 12 dígitos
		"111.222.333-4",   // 10 tras normalizar
		"abc.def.ghi-jk",  // 0 dígitos
		"111.222.333-445", // 12 tras normalizar
	}
	for _, s := range invalid {
		if IsValidCPF(s) {
			t.Errorf("IsValidCPF(%q) = true, want false", s)
		}
	}
}

func TestNormalizeCPF(t *testing.T) {
	if got := NormalizeCPF("111.222.333-44"); got != "11122233344" {
		t.Fatalf("NormalizeCPF = %q, want 11122233344", got)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"a@b.com",
		"ana.silva@clinica-reab.com.br",
		"user_name@domain.org",
	}
	for _, s := range valid {
		if !IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"ana",
		"ana@",
		"@dominio.com",
		"ana@dominio",
		"ana dominio@x.com",
		"ana@dominio.",
	}
	for _, s := range invalid {
		if IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = true, want false", s)
		}
	}
}
