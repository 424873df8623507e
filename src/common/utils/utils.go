package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validatorM 存储自定义的验证器函数映射
	// key: 验证规则名称 (binding tag 中使用, 如 "psbt")
	// value: 验证函数实现
	validatorM map[string]validator.Func
	// patternM 存储预编译的正则表达式
	patternM map[string]*regexp.Regexp
	// structValidator 读取 binding tag, 与 gin 的绑定校验使用同一套规则
	structValidator *validator.Validate
)

// init 初始化验证器和正则模式
func init() {
	validatorM = map[string]validator.Func{
		"psbt": regexpValidator,
	}
	patternM = map[string]*regexp.Regexp{
		// 集合 slug: 小写字母, 数字, 短横线
		"slug": regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`),
		// PSBT: base64 编码以 "cHNidP8" (psbt 0xff 魔数) 开头, 或 hex 编码以 "70736274ff" 开头 (ff 不区分大小写)
		"psbt": regexp.MustCompile(`^(cHNidP8[A-Za-z0-9+/]+={0,2}|70736274[fF]{2}[0-9a-fA-F]+)$`),
	}

	structValidator = validator.New()
	structValidator.SetTagName("binding")
	if err := RegisterValidators(structValidator); err != nil {
		panic(err)
	}
}

// regexpValidator 通用正则验证器
// 根据 tag 名称(如 "psbt")查找对应的正则表达式并进行匹配
var regexpValidator validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	pattern, ok := patternM[fl.GetTag()]
	if !ok {
		return false
	}
	return pattern.MatchString(value)
}

// RegisterValidators 将自定义规则注册到 validator 实例 (通常是 gin 的 binding 引擎)
func RegisterValidators(v *validator.Validate) error {
	for tag, fn := range validatorM {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// IsValidSlug 校验集合 slug
func IsValidSlug(slug string) bool {
	return patternM["slug"].MatchString(slug)
}

// ValidateStruct 按 binding tag 校验请求结构体
func ValidateStruct(obj interface{}) error {
	return structValidator.Struct(obj)
}
