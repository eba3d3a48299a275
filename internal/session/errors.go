package session

import (
	"errors"
	"fmt"

	"snipedash/internal/gateway/botapi"
	"snipedash/internal/settings"
	"snipedash/internal/types"
)

// NotFoundError 表示在没有设置文档的情况下保存了非 general 分组。
// 首次保存必须从 general 开始，由它惰性创建整份带默认值的文档。
type NotFoundError struct {
	Section types.Section
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no settings document exists; save general settings before %s", e.Section)
}

// IsValidation 判断错误是否为字段校验失败。
func IsValidation(err error) bool {
	var ve *settings.ValidationError
	return errors.As(err, &ve)
}

// IsTransport 判断错误是否为与协作方的通信失败。
func IsTransport(err error) bool {
	var te *botapi.TransportError
	return errors.As(err, &te)
}

// IsNotFound 判断错误是否为设置文档缺失。
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
