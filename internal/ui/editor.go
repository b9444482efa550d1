package ui

import (
	"github.com/rivo/tview"
)

// EditorView holds the editable narrative, the webhook target and the
// action buttons.
type EditorView struct {
	text    *tview.TextArea
	webhook *tview.InputField
	buttons *tview.Flex
	layout  *tview.Flex
}

// EditorActions are invoked from the draw loop when a button is pressed.
type EditorActions struct {
	OnEdit       func(text string)
	OnWebhook    func(url string)
	OnPost       func()
	OnRegenerate func()
	OnRefresh    func()
}

func NewEditorView(webhookURL string, actions EditorActions) *EditorView {
	v := &EditorView{}

	v.text = tview.NewTextArea().
		SetPlaceholder("Narrative appears here after the first run. Edit freely before posting.")
	v.text.SetChangedFunc(func() { actions.OnEdit(v.text.GetText()) })
	v.text.SetTitle(" Narrative (Ctrl-N) ").SetBorder(true)

	v.webhook = tview.NewInputField().
		SetLabel("Webhook URL (Ctrl-W) ").
		SetText(webhookURL).
		SetChangedFunc(actions.OnWebhook)

	v.buttons = tview.NewFlex().
		AddItem(tview.NewButton("Post (Ctrl-P)").SetSelectedFunc(actions.OnPost), 0, 1, false).
		AddItem(nil, 1, 0, false).
		AddItem(tview.NewButton("Regenerate (Ctrl-G)").SetSelectedFunc(actions.OnRegenerate), 0, 1, false).
		AddItem(nil, 1, 0, false).
		AddItem(tview.NewButton("Refresh (Ctrl-R)").SetSelectedFunc(actions.OnRefresh), 0, 1, false)

	v.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.text, 0, 1, true).
		AddItem(v.webhook, 1, 0, false).
		AddItem(v.buttons, 1, 0, false)

	return v
}

// Widget returns the tview primitive.
func (v *EditorView) Widget() tview.Primitive {
	return v.layout
}

// SetDraft replaces the editor content unless it already matches, so the
// cursor is kept across reruns.
func (v *EditorView) SetDraft(draft string) {
	if v.text.GetText() != draft {
		v.text.SetText(draft, false)
	}
}
