// prompts.go - Instruction prompts for SiliconFlow vision recognition

package recognizer

import "fmt"

// One fixed prompt per recognition mode. The formula prompt forbids
// markdown fences and $ delimiters so the result can be pasted into an
// equation editor directly.
const (
	promptFormula  = "请识别图片中的数学公式，只返回纯LaTeX代码，不要用markdown代码块包裹，不要加$符号，不要解释。"
	promptOCR      = "请识别图片中的所有文字内容，保持原始排版格式。只返回识别到的文字，不要解释。"
	promptDocument = "请识别图片中的所有内容（包括文字、公式、表格等），以Markdown格式返回。公式用$...$（行内）或$$...$$（块级）包裹，表格用Markdown表格语法，保持原始排版结构。不要解释。"
)

func promptForMode(mode string) string {
	switch mode {
	case "ocr":
		return promptOCR
	case "document":
		return promptDocument
	}
	return promptFormula
}

// verifyPrompt asks the model to re-check its own transcription against the
// image: return the formula unchanged if correct, a corrected one if not.
func verifyPrompt(primaryText string) string {
	return fmt.Sprintf(
		"请对照图片检查以下LaTeX公式是否正确。如果正确，原样返回该公式；如果有错误，返回修正后的公式。只返回最终的纯LaTeX代码，不要解释。\n\n识别结果：%s",
		primaryText)
}
