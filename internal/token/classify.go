package token

// wordAlphabet is the fixed set of bytes that can form a word: ASCII letters,
// digits, and underscore.
const wordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

// wordBytes maps every possible byte to its word/separator classification.
// Built once at init and never written afterward, so unsynchronized concurrent
// reads are safe.
var wordBytes [256]bool

func init() {
	for i := 0; i < len(wordAlphabet); i++ {
		wordBytes[wordAlphabet[i]] = true
	}
}

// IsWordByte reports whether b belongs to a word.
func IsWordByte(b byte) bool { return wordBytes[b] }
