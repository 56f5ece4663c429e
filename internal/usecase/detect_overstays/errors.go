package detect_overstays

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("detect_overstays: internal error")
)
