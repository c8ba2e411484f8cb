package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 参数校验错误的翻译器，InitTrans 之后可用
var Trans ut.Translator

// InitTrans 初始化 gin 校验器的翻译，locale 为 "zh" 或 "en"
// 错误信息中的字段名使用 json tag
func InitTrans(locale string) (err error) {
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			// 查询参数只有 form tag
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	uni := ut.New(en.New(), zh.New(), en.New())
	Trans, ok = uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "zh":
		if err = zh_translations.RegisterDefaultTranslations(v, Trans); err != nil {
			return err
		}
		// 讲道日期与活动时间都用 datetime 校验
		return registerTranslation(v, "datetime", "{0}的格式必须是{1}")
	default:
		return en_translations.RegisterDefaultTranslations(v, Trans)
	}
}

func registerTranslation(v *validator.Validate, tag, text string) error {
	return v.RegisterTranslation(tag, Trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}

// RemoveTopStruct 去掉字段名前的结构体前缀，如 "SermonRequest.title" -> "title"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// defaultValidator gin 未初始化校验器时的兜底实现
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj any) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() any {
	return v.validator
}
