package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ChallengeView is the arithmetic gate shown before anything else.
type ChallengeView struct {
	form    *tview.Form
	input   *tview.InputField
	message *tview.TextView
	layout  *tview.Flex
}

func NewChallengeView(question string, onVerify func(answer string)) *ChallengeView {
	v := &ChallengeView{}

	v.input = tview.NewInputField().
		SetLabel(question + " ").
		SetFieldWidth(4).
		SetAcceptanceFunc(tview.InputFieldInteger)
	v.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			onVerify(v.input.GetText())
		}
	})

	v.form = tview.NewForm().
		AddFormItem(v.input).
		AddButton("Verify", func() { onVerify(v.input.GetText()) })
	v.form.SetTitle(" Verification ").SetBorder(true)

	v.message = tview.NewTextView().SetDynamicColors(true)

	// Centered box
	v.layout = tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(v.form, 7, 0, true).
			AddItem(v.message, 2, 0, false).
			AddItem(nil, 0, 1, false), 44, 0, true).
		AddItem(nil, 0, 1, false)

	return v
}

// Widget returns the tview primitive.
func (v *ChallengeView) Widget() tview.Primitive {
	return v.layout
}

// Focus is the primitive that should receive focus when the page shows.
func (v *ChallengeView) Focus() tview.Primitive {
	return v.input
}

// Retry shows a new question after a wrong answer.
func (v *ChallengeView) Retry(question, message string) {
	v.input.SetLabel(question + " ").SetText("")
	v.message.SetText("[red]" + tview.Escape(message) + "[-]")
}
