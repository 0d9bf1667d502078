package response

import "fmt"

// AppError 携带业务码的错误，沿 handler 链向外传递
type AppError struct {
	Code    int    // 业务码，见 codes.go
	Message string // 面向调用方的描述
	Err     error  // 底层错误，可为空
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 把底层错误包装为带业务码的 AppError
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
