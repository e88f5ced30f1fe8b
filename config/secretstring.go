package config

// SecretStringValue replaces secret values in dumps, exported for tests.
const SecretStringValue = "<secret>"

// SecretString holds values (API keys and such) which must not appear in logs,
// configuration dumps or debug reports.
type SecretString string

// MarshalJSON hides actual value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

// MarshalYAML hides actual value.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

// String hides actual value from fmt and zap.Stringer.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}
