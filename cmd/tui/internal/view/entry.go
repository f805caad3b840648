package view

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nileshdj/pavti/internal/media"
	"github.com/nileshdj/pavti/internal/receipt"
)

// entryFields are the form bindings for a new receipt, in the order the
// paper form lists them.
type entryFields struct {
	accountHead   string
	accountNumber string
	receiptNumber string
	receiptType   string

	name     string
	address1 string
	address2 string
	taluka   string
	district string
	pinCode  string
	state    string
	mobile   string
	gotra    string

	grossWeight string
	netWeight   string
	goods       string

	image1Path string
	image2Path string
}

type entrySavedMsg struct {
	rec *receipt.Receipt
	err error
}

type EntryModel struct {
	CommonModel
	receiptService *receipt.Service
	mediaStore     *media.Store
	actorID        int64

	form   *huh.Form
	fields *entryFields
	saved  *receipt.Receipt
	err    error
}

func NewEntryModel(receiptSvc *receipt.Service, mediaStore *media.Store, actorID int64) EntryModel {
	m := EntryModel{
		receiptService: receiptSvc,
		mediaStore:     mediaStore,
		actorID:        actorID,
		fields:         &entryFields{receiptType: string(receipt.TypeGold)},
	}
	m.form = m.newForm()

	return m
}

func (m EntryModel) newForm() *huh.Form {
	f := m.fields

	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("required")
		}
		return nil
	}

	existingFile := func(s string) error {
		if _, err := os.Stat(strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("file not found")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Account Head").Value(&f.accountHead).Validate(required),
			huh.NewInput().Title("Account Number").Value(&f.accountNumber).Validate(required),
			huh.NewInput().Title("Receipt Number").Value(&f.receiptNumber).Validate(required),
			huh.NewSelect[string]().
				Title("Receipt Type").
				Options(
					huh.NewOption("Gold", string(receipt.TypeGold)),
					huh.NewOption("Silver", string(receipt.TypeSilver)),
				).
				Value(&f.receiptType),
		),

		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.name).Validate(required),
			huh.NewInput().Title("Address 1").Value(&f.address1).Validate(required),
			huh.NewInput().Title("Address 2 (optional)").Value(&f.address2),
			huh.NewInput().Title("Taluka").Value(&f.taluka).Validate(required),
			huh.NewInput().Title("District").Value(&f.district).Validate(required),
			huh.NewInput().Title("Pin Code").Value(&f.pinCode).Validate(required),
			huh.NewInput().Title("State").Value(&f.state).Validate(required),
			huh.NewInput().Title("Mobile").Value(&f.mobile).Validate(required),
			huh.NewInput().Title("Gotra").Value(&f.gotra).Validate(required),
		),

		huh.NewGroup(
			huh.NewInput().Title("Gross Weight").Value(&f.grossWeight).Validate(validWeight),
			huh.NewInput().Title("Net Weight").Value(&f.netWeight).Validate(validWeight),
			huh.NewInput().Title("Goods").Value(&f.goods).Validate(required),
			huh.NewInput().Title("Image 1 (file path)").Value(&f.image1Path).Validate(existingFile),
			huh.NewInput().Title("Image 2 (file path)").Value(&f.image2Path).Validate(existingFile),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m EntryModel) Title() string     { return "New Receipt" }
func (m EntryModel) ShortHelp() string { return "Navigate form | Esc: back" }

func (m EntryModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m EntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entrySavedMsg:
		m.err = msg.err
		m.saved = msg.rec

		if msg.err == nil {
			m.fields = &entryFields{receiptType: string(receipt.TypeGold)}
		}

		m.form = m.newForm()

		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m EntryModel) saveCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		params, err := receipt.ParseCreate(entryForm(f))
		if err != nil {
			return entrySavedMsg{err: err}
		}

		params.Image1, err = m.mediaStore.SaveFile(strings.TrimSpace(f.image1Path))
		if err != nil {
			return entrySavedMsg{err: err}
		}

		params.Image2, err = m.mediaStore.SaveFile(strings.TrimSpace(f.image2Path))
		if err != nil {
			return entrySavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		rec, err := m.receiptService.Create(ctx, params, &m.actorID)

		return entrySavedMsg{rec: rec, err: err}
	}
}

func entryForm(f entryFields) url.Values {
	form := url.Values{}
	form.Set("account_head", f.accountHead)
	form.Set("account_number", f.accountNumber)
	form.Set("receipt_number", f.receiptNumber)
	form.Set("receipt_type", f.receiptType)
	form.Set("name", f.name)
	form.Set("address1", f.address1)
	form.Set("address2", f.address2)
	form.Set("taluka", f.taluka)
	form.Set("district", f.district)
	form.Set("pin_code", f.pinCode)
	form.Set("state", f.state)
	form.Set("mobile", f.mobile)
	form.Set("gotra", f.gotra)
	form.Set("gross_weight", f.grossWeight)
	form.Set("net_weight", f.netWeight)
	form.Set("goods", f.goods)

	return form
}

func (m EntryModel) View() string {
	var banner string

	switch {
	case m.err != nil:
		banner = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render(fmt.Sprintf("Error: %v", m.err))
	case m.saved != nil:
		banner = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render(fmt.Sprintf("Saved receipt #%d (%s)", m.saved.ID, m.saved.ReceiptNumber))
	}

	body := m.form.View()
	if banner != "" {
		body = banner + "\n\n" + body
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}
