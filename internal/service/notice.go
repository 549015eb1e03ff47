package service

// Variant 提示样式
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice 面向用户的提示，由展示层负责渲染
type Notice struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

func info(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: VariantDefault}
}

func failure(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: VariantDestructive}
}

// truncateRunes 按字符截断并追加省略号
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
