package app

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/hitoshi/flavorcast/internal/model"
	"github.com/hitoshi/flavorcast/internal/schedule"
	"github.com/olekukonko/tablewriter"
)

// palette はCLI出力の配色。
type palette struct {
	good    *color.Color
	bad     *color.Color
	warn    *color.Color
	subdued *color.Color
}

// newPalette は配色を生成する。noColorの場合はエスケープシーケンスを出力しない。
func newPalette(noColor bool) palette {
	p := palette{
		good:    color.New(color.FgGreen, color.Bold),
		bad:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow),
		subdued: color.New(color.FgHiBlack),
	}
	if noColor {
		for _, c := range []*color.Color{p.good, p.bad, p.warn, p.subdued} {
			c.DisableColor()
		}
	}
	return p
}

// printFlavors はフレーバー予報の結果を1行ずつ出力する。
func printFlavors(w io.Writer, p palette, result model.FlavorResult) {
	date := result.Date.Format(dateFlagLayout)

	switch result.Outcome {
	case model.OutcomeFound:
		fmt.Fprintf(w, "%s %s: %s\n", p.good.Sprint("FLAVORS"), date, schedule.JoinList(result.Flavors))
	case model.OutcomeClosed:
		fmt.Fprintf(w, "%s The shop is closed on %s.\n", p.bad.Sprint("CLOSED"), date)
	case model.OutcomeNotFound:
		fmt.Fprintf(w, "%s No flavor forecast for %s.\n", p.warn.Sprint("NONE"), date)
	default:
		fmt.Fprintf(w, "%s Could not look up flavors for %s: %s\n",
			p.bad.Sprint("ERROR"), date, result.ErrorMessage())
		if result.Error != nil {
			fmt.Fprintf(w, "  %s\n", p.subdued.Sprintf("kind: %s", result.Error.Kind))
		}
	}
}

// printStatus は営業状態を出力する。
func printStatus(w io.Writer, p palette, shopName string, status model.Status) {
	at := p.subdued.Sprintf("as of %s", status.At.Format(time.RFC3339))
	if status.IsOpen {
		fmt.Fprintf(w, "%s is %s. It closes in %s. %s\n",
			shopName, p.good.Sprint("OPEN"), durationText(status), at)
		return
	}
	fmt.Fprintf(w, "%s is %s. It opens in %s. %s\n",
		shopName, p.bad.Sprint("CLOSED"), durationText(status), at)
}

func durationText(status model.Status) string {
	if status.HumanizedDuration == "" {
		return "0 seconds"
	}
	return status.HumanizedDuration
}

// printWeeklyHours は1週間の営業時間を表形式で出力する。todayの行には印を付ける。
func printWeeklyHours(w io.Writer, today time.Weekday) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Day", "Open", "Close", ""})

	var data [][]string
	for _, wd := range schedule.WeekOrder() {
		open, closing := schedule.HoursForWeekday(wd)
		marker := ""
		if wd == today {
			marker = "today"
		}
		data = append(data, []string{wd.String(), open, closing, marker})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
