package xerrors

// Unwrap flattens an error produced by errors.Join into its parts. An error
// without a multi-unwrap, including nil, is returned as is.
func Unwrap(err error) []error {
	if err == nil {
		return nil
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	return joined.Unwrap()
}
