package model

import "golang.org/x/text/cases"

// Fold 对文本做 Unicode 大小写折叠，搜索列与查询词使用同一规则
func Fold(s string) string {
	return cases.Fold().String(s)
}
