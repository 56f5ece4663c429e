package extension

import "errors"

var (
	// ErrExtensionNotFound возвращается, когда заявка на продление не найдена
	ErrExtensionNotFound = errors.New("extension.repository: extension not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("extension.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("extension.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("extension.repository: failed to scan row")
)
