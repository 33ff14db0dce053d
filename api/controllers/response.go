package controllers

import "fmt"

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 构造成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data}
}

// BadRequestResponse 构造请求参数错误响应
func BadRequestResponse(msg string, err error) *APIResponse {
	return &APIResponse{Status: 400, Msg: withErr(msg, err)}
}

// NotFoundResponse 构造资源不存在响应
func NotFoundResponse(msg string) *APIResponse {
	return &APIResponse{Status: 404, Msg: msg}
}

// InternalErrorResponse 构造服务器内部错误响应
func InternalErrorResponse(msg string, err error) *APIResponse {
	return &APIResponse{Status: 500, Msg: withErr(msg, err)}
}

// ConflictResponse 构造资源冲突响应（如同一数据集的运行已在进行中）
func ConflictResponse(msg string) *APIResponse {
	return &APIResponse{Status: 409, Msg: msg}
}

// ServiceUnavailableResponse 构造依赖未就绪响应（如数据库未配置）
func ServiceUnavailableResponse(msg string) *APIResponse {
	return &APIResponse{Status: 503, Msg: msg}
}

func withErr(msg string, err error) string {
	if err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, err)
}
