// Package logging provides the core's structured logger: a thin
// go.uber.org/zap wrapper that never lets key material reach a log line
// except through an explicit, opt-in accessor.
package logging

import (
	"go.uber.org/zap"
)

// SecureLogger wraps a zap.Logger and adds Reveal-gated fields for the two
// key-material types this core ever handles: private keys and mnemonics.
// Every other field is passed straight through to zap.
type SecureLogger struct {
	z *zap.Logger
}

// New constructs a SecureLogger around a production zap configuration.
func New() (*SecureLogger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &SecureLogger{z: z}, nil
}

// NewNop returns a SecureLogger that discards everything, for tests and for
// callers that haven't wired a sink.
func NewNop() *SecureLogger {
	return &SecureLogger{z: zap.NewNop()}
}

func (l *SecureLogger) Sync() error { return l.z.Sync() }

func (l *SecureLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *SecureLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *SecureLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
func (l *SecureLogger) Fatal(msg string, fields ...zap.Field) { l.z.Fatal(msg, fields...) }

// Revealed is a key-material value wrapped so its String()/zap.Stringer
// form is always redacted unless the caller explicitly calls Reveal. A
// Revealed value passed as a zap.Field argument (via SecretField)
// logs as "<redacted>".
type Revealed struct {
	value string
}

// Secret wraps a sensitive string (a hex private key, a mnemonic phrase)
// for safe passage through normal log calls.
func Secret(value string) Revealed { return Revealed{value: value} }

// String implements fmt.Stringer (which zap.Stringer fields encode) with
// the redacted form — this is what prints if a Revealed value
// is formatted anywhere without going through Reveal first.
func (r Revealed) String() string { return "<redacted>" }

// Reveal returns the underlying secret. Every call site that reaches for
// this is, by construction, the one explicit place key material is allowed
// to leave this type — grep for Reveal( to audit every such site.
func (r Revealed) Reveal() string { return r.value }

// SecretField builds a zap.Field that logs as "<redacted>" for key, never
// the underlying value.
func SecretField(key, value string) zap.Field {
	return zap.Stringer(key, Secret(value))
}
