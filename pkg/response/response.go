package response

type JSONRes struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Error(code, message string, data any) JSONRes {
	return JSONRes{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func OK(message string, data any) JSONRes {
	return JSONRes{
		Code:    "OK",
		Message: message,
		Data:    data,
	}
}
