package clients

import "regexp"

var (
	nonDigitsRe = regexp.MustCompile(`\D`)
	emailRe     = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
)

// NormalizeCPF deja solo los dígitos ("111.222.333-44" => "11122233344").
func NormalizeCPF(s string) string {
	return nonDigitsRe.ReplaceAllString(s, "")
}

// IsValidCPF exige exactamente 11 dígitos tras normalizar.
// Sin dígito verificador: el largo es el único criterio.
func IsValidCPF(s string) bool {
	return len(NormalizeCPF(s)) == 11
}

// IsValidEmail valida la forma local@dominio.tld, sin pretender RFC completo.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}
