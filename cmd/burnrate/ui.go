package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/akinori114514/game/internal/autoplay"
	"github.com/akinori114514/game/internal/cli"
	"github.com/akinori114514/game/internal/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5F87")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(14)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptChoice(label string, options []string) (string, error) {
	for {
		fmt.Printf("%s (%s): ", label, strings.Join(options, "/"))
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		for _, opt := range options {
			if strings.EqualFold(opt, text) {
				return opt, nil
			}
		}
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		printWarn("Invalid option. Pick one of the listed values or its number.")
	}
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func renderStatus(s game.GameState) {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("BurnRate  %s  week %d", s.Date, s.Week)),
		row("Phase", string(s.Phase)),
		row("Cash", colorizeYen(s.Cash)),
		row("MRR", formatYen(s.KPI.MRR)),
		row("Runway", formatRunway(s.RunwayMonths)),
		row("Growth MoM", colorizePercent(s.KPI.GrowthRateMoM*100)),
		row("Churn", fmt.Sprintf("%.2f%%", s.KPI.ChurnRate*100)),
		row("Sanity", gauge(s.Sanity)),
		row("PMF", gauge(s.PMFScore)),
		row("Tech debt", strconv.Itoa(s.TechDebt)),
		row("Family", gauge(s.FamilyRelationship)),
		row("Team", fmt.Sprintf("%d (%s)", s.Employees.Len(), teamMix(s.Employees))),
		row("Investor", string(s.InvestorType)),
		row("Market", string(s.MarketTrend)),
		row("Leads", fmt.Sprintf("%d (capacity %d, lost %d)", s.Leads, s.PipelineMetrics.SalesCapacity, s.PipelineMetrics.LeadsLost)),
	}
	var modes []string
	if s.IsMachineMode {
		modes = append(modes, danger.Sprint("MACHINE MODE"))
	}
	if s.IsDecisionMode {
		modes = append(modes, warn.Sprint("DECISION"))
	}
	if s.IsGameOver {
		modes = append(modes, danger.Sprint("GAME OVER"))
	}
	if len(modes) > 0 {
		lines = append(lines, row("Mode", strings.Join(modes, " ")))
	}
	fmt.Println(panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))

	if ev := s.ActiveEvent; ev != nil {
		fmt.Println()
		accent.Printf("EVENT: %s\n", ev.Title)
		printInfo(ev.Description)
		for i, c := range ev.Choices {
			fmt.Printf("  %d) %-14s %s\n", i+1, c.ID, c.Label)
		}
	}
	if ev := s.ActiveMajorEvent; ev != nil {
		fmt.Println()
		accent.Printf("MAJOR EVENT: %s (resistance %.0f, reward %s MRR)\n", ev.Label, ev.Resistance, formatYen(ev.RewardMRR))
		printInfo("Run `burnrate major` to negotiate.")
	}
	if n := s.Negotiation; n != nil {
		fmt.Println()
		renderNegotiation(*n)
	}
	if unread := s.UnreadNotifications(); unread > 0 {
		fmt.Println()
		accent.Printf("Notifications (%d unread)\n", unread)
		for _, n := range s.Notifications {
			if !n.IsRead {
				fmt.Printf("  [%s] %s\n", n.Type, n.Message)
			}
		}
	}
}

func renderNegotiation(n game.Negotiation) {
	accent.Printf("NEGOTIATION: %s\n", n.Label)
	fmt.Printf("Resistance %.0f/%.0f   Moves left %d\n", n.Resistance, n.MaxResistance, n.Moves)
	fmt.Printf("%-8s %-20s %5s %6s %s\n", "CARD", "NAME", "COST", "POWER", "SIDE EFFECTS")
	for _, c := range n.Deck {
		var fx []string
		if c.CashCost > 0 {
			fx = append(fx, "cash -"+formatYen(c.CashCost))
		}
		if c.SanityCost > 0 {
			fx = append(fx, fmt.Sprintf("sanity -%d", c.SanityCost))
		}
		if c.TechDebt > 0 {
			fx = append(fx, fmt.Sprintf("debt +%d", c.TechDebt))
		}
		fmt.Printf("%-8s %-20s %5d %6.0f %s\n", c.ID, truncate(c.Name, 20), c.Cost, c.Power, strings.Join(fx, ", "))
	}
}

func renderDeals(v cli.DealsView) {
	accent.Println("Deals")
	fmt.Printf("%-11s %-26s %10s %6s %12s  %s\n", "TARGET", "LABEL", "RESIST", "MOVES", "MRR", "STATUS")
	for _, d := range v.Deals {
		status := success.Sprint("open")
		if d.Locked != "" {
			status = danger.Sprint(d.Locked)
		}
		if d.Profile == nil {
			fmt.Printf("%-11s %-26s %10s %6s %12s  %s\n", d.Target, "-", "-", "-", "-", status)
			continue
		}
		p := d.Profile
		fmt.Printf("%-11s %-26s %10.0f %6d %12s  %s\n", d.Target, truncate(p.Label, 26), p.Resistance, p.Moves, formatYen(p.MRR), status)
	}
	fmt.Println()
	accent.Println("Your deck")
	for _, c := range v.Deck {
		fmt.Printf("  %-8s %-20s cost %d power %.0f\n", c.ID, c.Name, c.Cost, c.Power)
	}
}

func renderFinancials(b game.RevenueBreakdown) {
	accent.Println("Projected month")
	fmt.Printf("Engineer growth:  %s\n", formatYen(b.EngineerGrowth))
	fmt.Printf("Sales growth:     %s\n", formatYen(b.SalesGrowth))
	fmt.Printf("Marketing bonus:  %s\n", formatYen(b.MarketingBonus))
	fmt.Printf("CS penalty:       %s\n", colorizeYen(-b.CSPenalty))
	fmt.Printf("Projected MRR:    %s\n", formatYen(b.ProjectedMRR))
	fmt.Printf("Monthly burn:     %s\n", formatYen(b.MonthlyBurn))
	fmt.Printf("Net burn:         %s\n", colorizeYen(-b.NetMonthlyBurn))
	fmt.Printf("Product quality:  %d\n", b.ProductQuality)
}

func renderEnding(e game.Ending) {
	fmt.Println(panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(e.Title),
		e.Description,
		"",
		row("Week", strconv.Itoa(e.Week)),
		row("Phase", string(e.Phase)),
		row("Cash", colorizeYen(e.Cash)),
		row("MRR", formatYen(e.MRR)),
		row("Philosophy", fmt.Sprintf("ruthless %d, craft %d, dishonest %d, lonely %d",
			e.Philosophy.Ruthlessness, e.Philosophy.Craftsmanship, e.Philosophy.Dishonesty, e.Philosophy.Loneliness)),
	)))
}

func renderReplay(v cli.ReplayView) {
	for _, r := range v.Results {
		line := fmt.Sprintf("%-20s %-10s week %d", r.Kind, r.Status, r.Week)
		switch r.Status {
		case "applied":
			printSuccess(line)
		case "duplicate":
			printWarn(line)
		default:
			printError(line + "  " + r.Error)
		}
	}
}

func renderOutcome(o autoplay.Outcome) {
	state := "still running"
	if o.GameOver {
		state = "bankrupt"
	}
	accent.Printf("Simulation (%s policy): %s at week %d\n", o.Policy, state, o.Weeks)
	fmt.Printf("Cash %s, MRR %s, phase %s, %d actions (%d rejected)\n",
		colorizeYen(o.Cash), formatYen(o.MRR), o.Phase, o.Actions, o.Rejected)
	fmt.Printf("Ending: %s\n", o.Ending.Title)
}

func teamMix(t game.Team) string {
	roles := []game.Role{game.RoleEngineer, game.RoleSales, game.RoleCS, game.RoleMarketer, game.RoleManager}
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		if n := t.Count(r); n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", strings.ToLower(string(r)), n))
		}
	}
	if len(parts) == 0 {
		return "solo"
	}
	return strings.Join(parts, ", ")
}

func renderTeam(t game.Team) {
	if t.Len() == 0 {
		printInfo("No employees yet.")
		return
	}
	fmt.Printf("%-10s %-18s %-9s %10s %-10s %s\n", "ID", "NAME", "ROLE", "SALARY", "CULTURE", "MANAGER")
	for _, e := range t.List() {
		mgr := "founder"
		if e.ManagerID != "" {
			mgr = e.ManagerID
		}
		fmt.Printf("%-10s %-18s %-9s %10s %-10s %s\n", e.ID, truncate(e.Name, 18), e.Role, formatYen(e.Salary), e.Culture, mgr)
	}
}

func gauge(v int) string {
	text := fmt.Sprintf("%d/100", v)
	switch {
	case v >= 60:
		return success.Sprint(text)
	case v >= 30:
		return warn.Sprint(text)
	default:
		return danger.Sprint(text)
	}
}

func formatRunway(months float64) string {
	if months >= game.InfiniteRunway {
		return success.Sprint("profitable")
	}
	text := fmt.Sprintf("%.1f months", months)
	if months < 3 {
		return danger.Sprint(text)
	}
	return text
}

func colorizeYen(v float64) string {
	text := formatYen(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.1f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatYen(v float64) string {
	return game.FormatYen(v)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
