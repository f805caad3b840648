package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nileshdj/pavti/internal/receipt"
)

type receiptsState int

const (
	receiptsStateBrowse receiptsState = iota
	receiptsStateEdit
)

type loadReceiptsMsg struct {
	receipts []*receipt.Receipt
	err      error
}

type receiptSaveMsg struct {
	err error
}

type receiptDeleteMsg struct {
	err error
}

type ReceiptsModel struct {
	CommonModel
	receiptService *receipt.Service
	actorID        int64

	state    receiptsState
	table    table.Model
	receipts []*receipt.Receipt
	form     *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formName  string
	formGross string
	formNet   string
	formType  string
}

func NewReceiptsModel(receiptSvc *receipt.Service, actorID int64) ReceiptsModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Date", Width: 12},
		{Title: "Receipt#", Width: 10},
		{Title: "Name", Width: 28},
		{Title: "Type", Width: 8},
		{Title: "Gross", Width: 10},
		{Title: "Net", Width: 10},
		{Title: "Filled By", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ReceiptsModel{
		receiptService: receiptSvc,
		actorID:        actorID,
		table:          t,
	}
}

func (m ReceiptsModel) Title() string { return "Receipts" }
func (m ReceiptsModel) ShortHelp() string {
	if m.state == receiptsStateEdit {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | e: edit | x: delete | r: refresh"
}

func (m ReceiptsModel) Init() tea.Cmd {
	return m.loadReceiptsCmd()
}

func (m ReceiptsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadReceiptsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.receipts = msg.receipts
		m.refreshTable()
		return m, nil

	case receiptSaveMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		} else {
			m.status = "Saved"
		}
		m.state = receiptsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadReceiptsCmd()

	case receiptDeleteMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
		} else {
			m.status = "Deleted"
		}
		return m, m.loadReceiptsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case receiptsStateBrowse:
		return m.updateBrowse(msg)
	case receiptsStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ReceiptsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadReceiptsCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m.deleteSelected()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ReceiptsModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.receipts) {
		return m, nil
	}

	rec := m.receipts[idx]
	m.formName = rec.Name
	m.formGross = rec.GrossWeight.StringFixed(2)
	m.formNet = rec.NetWeight.StringFixed(2)
	m.formType = string(rec.Type)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("gross_weight").
				Title("Gross Weight").
				Value(&m.formGross).
				Validate(validWeight),

			huh.NewInput().
				Key("net_weight").
				Title("Net Weight").
				Value(&m.formNet).
				Validate(validWeight),

			huh.NewSelect[string]().
				Key("receipt_type").
				Title("Receipt Type").
				Options(
					huh.NewOption("Gold", string(receipt.TypeGold)),
					huh.NewOption("Silver", string(receipt.TypeSilver)),
				).
				Value(&m.formType),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = receiptsStateEdit
	m.table.Blur()
	return m, m.form.Init()
}

func (m ReceiptsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = receiptsStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
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

func (m ReceiptsModel) saveCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.receipts) {
		return nil
	}

	id := m.receipts[idx].ID

	name := m.form.GetString("name")
	gross, _ := decimal.NewFromString(m.form.GetString("gross_weight"))
	net, _ := decimal.NewFromString(m.form.GetString("net_weight"))
	rtype := receipt.Type(m.form.GetString("receipt_type"))

	params := receipt.UpdateParams{
		Name:        &name,
		GrossWeight: &gross,
		NetWeight:   &net,
		Type:        &rtype,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.receiptService.Update(ctx, id, params, m.actorID)

		return receiptSaveMsg{err: err}
	}
}

func (m ReceiptsModel) deleteSelected() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.receipts) {
		return m, nil
	}

	id := m.receipts[idx].ID

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return receiptDeleteMsg{err: m.receiptService.Delete(ctx, id)}
	}
}

func (m ReceiptsModel) loadReceiptsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rs, err := m.receiptService.List(ctx)

		return loadReceiptsMsg{receipts: rs, err: err}
	}
}

func (m *ReceiptsModel) refreshTable() {
	rows := make([]table.Row, len(m.receipts))
	for i, rec := range m.receipts {
		rows[i] = table.Row{
			fmt.Sprintf("%d", rec.ID),
			FormatDate(rec.CreatedAt),
			rec.ReceiptNumber,
			rec.Name,
			string(rec.Type),
			FormatWeight(rec.GrossWeight),
			FormatWeight(rec.NetWeight),
			rec.FilledByUsername,
		}
	}

	m.table.SetRows(rows)
}

func (m ReceiptsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading receipts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView
	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(m.status),
			tableView,
		)
	}

	if m.state == receiptsStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Edit Receipt\n\n" + m.form.View())

		return lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", panel)
	}

	return content
}

func validWeight(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a decimal number")
	}

	if d.Exponent() < -2 {
		return fmt.Errorf("at most 2 decimal places")
	}

	return nil
}
