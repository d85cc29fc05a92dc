package utils

// PINLength is the number of digits a profile lock PIN carries.
const PINLength = 4

// SanitizePIN strips non-numeric characters from PIN entry input and caps it
// at PINLength digits.
func SanitizePIN(input string) string {
	out := make([]rune, 0, PINLength)
	for _, char := range input {
		if char < '0' || char > '9' {
			continue
		}
		out = append(out, char)
		if len(out) == PINLength {
			break
		}
	}
	return string(out)
}
