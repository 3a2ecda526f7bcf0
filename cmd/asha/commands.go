package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/poiesic/asha"
	"github.com/poiesic/asha/clinic"
	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/embedding"
	"github.com/poiesic/asha/ingestion"
	"github.com/poiesic/asha/intent"
	"github.com/poiesic/asha/storage"
	"github.com/urfave/cli/v2"
)

const (
	localTimeLayout = "2006-01-02 15:04"
	dateLayout      = "2006-01-02"
)

func (r *runner) openAssistant() (*asha.Assistant, error) {
	aiCfg, err := r.cfg.AI()
	if err != nil {
		return nil, err
	}
	a, err := asha.NewAssistant(r.cfg.DBPath,
		asha.WithAIConfig(aiCfg),
		asha.WithNamespace(r.cfg.Namespace),
		asha.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open clinic store: %w", err)
	}
	return a, nil
}

func (r *runner) printJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func messageText(c *cli.Context) (string, error) {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("message text is required")
	}
	return text, nil
}

func (r *runner) classifyCommand(c *cli.Context) error {
	text, err := messageText(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, intent.Classify(text))
	return nil
}

func (r *runner) routeCommand(c *cli.Context) error {
	text, err := messageText(c)
	if err != nil {
		return err
	}
	msg := core.Message{
		Text:             text,
		PatientID:        c.String("patient"),
		HasPendingUpload: c.Bool("upload"),
		Namespace:        c.String("namespace"),
	}
	if msg.Namespace == "" {
		msg.Namespace = r.cfg.Namespace
	}

	if !c.Bool("execute") {
		return r.printJSON(intent.Route(msg))
	}

	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	decision, reply, err := a.Handle(c.Context, msg)
	if err != nil {
		return err
	}
	return r.printJSON(struct {
		Decision core.RouteDecision `json:"decision"`
		Reply    *clinic.Reply      `json:"reply,omitempty"`
	}{decision, reply})
}

func (r *runner) embedCommand(c *cli.Context) error {
	aiCfg, err := r.cfg.AI()
	if err != nil {
		return err
	}
	pipeline, err := embedding.NewDefaultPipeline(aiCfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	res, err := pipeline.Embed(c.Context, c.Args().Slice())
	if err != nil {
		return err
	}

	out := struct {
		Backend   string      `json:"backend"`
		Dimension int         `json:"dimension"`
		Count     int         `json:"count"`
		Vectors   [][]float32 `json:"vectors,omitempty"`
	}{
		Backend:   string(res.Backend),
		Dimension: res.Dimension,
		Count:     len(res.Vectors),
	}
	if c.Bool("vectors") {
		out.Vectors = res.Vectors
	}
	return r.printJSON(out)
}

// parseLocalTime reads s in the zone tz. RFC 3339 input carries its own offset.
func parseLocalTime(s, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown time zone %q: %w", tz, err)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want %q or RFC 3339", s, localTimeLayout)
	}
	return t, nil
}

func (r *runner) bookCommand(c *cli.Context) error {
	when, err := parseLocalTime(c.String("at"), c.String("tz"))
	if err != nil {
		return err
	}

	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	appt, err := a.Clinic().Appointments.Book(c.Context, clinic.Booking{
		PatientID: c.String("patient"),
		When:      when,
		TZ:        c.String("tz"),
		Type:      c.String("type"),
		Clinician: c.String("clinician"),
		Notes:     c.String("notes"),
	})
	if err != nil {
		return err
	}
	return r.printAppointments(appt)
}

func (r *runner) upcomingCommand(c *cli.Context) error {
	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	appts, err := a.Clinic().Appointments.Upcoming(c.Context, c.String("patient"), c.Int("limit"))
	if err != nil {
		return err
	}
	if len(appts) == 0 {
		fmt.Fprintln(r.out, "No upcoming appointments.")
		return nil
	}
	return r.printAppointments(appts...)
}

func (r *runner) nextCommand(c *cli.Context) error {
	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	appt, err := a.Clinic().Appointments.Next(c.Context, c.String("patient"))
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(r.out, "No upcoming appointments.")
		return nil
	}
	if err != nil {
		return err
	}
	return r.printAppointments(appt)
}

func (r *runner) cancelCommand(c *cli.Context) error {
	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	appt, err := a.Clinic().Appointments.Cancel(c.Context, core.ID(c.Uint64("id")))
	if err != nil {
		return err
	}
	return r.printAppointments(appt)
}

func (r *runner) printAppointments(appts ...*core.Appointment) error {
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tTYPE\tCLINICIAN\tSTATUS")
	for _, appt := range appts {
		when := appt.When
		if loc, err := time.LoadLocation(appt.TZ); err == nil {
			when = when.In(loc)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			appt.Id, when.Format("2006-01-02 15:04 MST"), appt.Type, appt.Clinician, appt.Status)
	}
	return tw.Flush()
}

func (r *runner) setPlanCommand(c *cli.Context) error {
	var started time.Time
	if s := c.String("started"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid start date %q: want %q", s, dateLayout)
		}
		started = t
	}

	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := a.Clinic().Treatments.SetPlan(c.Context, clinic.Plan{
		PatientID: c.String("patient"),
		Regimen:   c.String("regimen"),
		Protocol:  c.String("protocol"),
		Notes:     c.String("notes"),
		StartedAt: started,
	})
	if err != nil {
		return err
	}
	return r.printTreatments(plan)
}

func (r *runner) statusCommand(c *cli.Context) error {
	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := a.Clinic().Treatments.Status(c.Context, c.String("patient"))
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(r.out, "No treatment plan on file.")
		return nil
	}
	if err != nil {
		return err
	}
	return r.printTreatments(plan)
}

func (r *runner) historyCommand(c *cli.Context) error {
	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	plans, err := a.Clinic().Treatments.History(c.Context, c.String("patient"), c.Int("limit"))
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Fprintln(r.out, "No treatment plan on file.")
		return nil
	}
	return r.printTreatments(plans...)
}

func (r *runner) printTreatments(plans ...*core.Treatment) error {
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tREGIMEN\tPROTOCOL\tSTARTED\tSTATUS")
	for _, p := range plans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			p.Id, p.Regimen, p.Protocol, p.StartedAt.Format(dateLayout), p.Status)
	}
	return tw.Flush()
}

func (r *runner) addResultCommand(c *cli.Context) error {
	var date time.Time
	if s := c.String("date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid lab date %q: want %q", s, dateLayout)
		}
		date = t
	}

	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	update, err := a.Clinic().Results.Record(c.Context, clinic.LabEntry{
		PatientID: c.String("patient"),
		Day:       c.Int("day"),
		Stage:     c.String("stage"),
		Total:     c.Int("total"),
		Good:      c.Int("good"),
		Grades:    c.String("grades"),
		Notes:     c.String("notes"),
		Date:      date,
	})
	if err != nil {
		return err
	}
	return r.printResults(update)
}

func (r *runner) listResultsCommand(c *cli.Context) error {
	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	updates, err := a.Clinic().Results.Updates(c.Context, c.String("patient"))
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		fmt.Fprintln(r.out, "No embryology updates on file.")
		return nil
	}
	return r.printResults(updates...)
}

func (r *runner) resultSummaryCommand(c *cli.Context) error {
	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.Clinic().Results.Summarize(c.Context, c.String("patient"))
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, summary.Markdown)
	return nil
}

func (r *runner) printResults(updates ...*core.EmbryologyUpdate) error {
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDAY\tSTAGE\tTOTAL\tGOOD\tGRADES\tDATE")
	for _, u := range updates {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			u.Id, u.Day, u.Stage, countCell(u.Total), countCell(u.Good), u.Grades, u.Date.Format(dateLayout))
	}
	return tw.Flush()
}

func countCell(n int) string {
	if n == core.NotReported {
		return "-"
	}
	return fmt.Sprint(n)
}

// jsonlIndex stands in for the external vector index: it writes every
// upserted record as one JSON line.
type jsonlIndex struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (j *jsonlIndex) Upsert(_ context.Context, namespace string, records []ingestion.VectorRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, rec := range records {
		if err := j.enc.Encode(struct {
			ID        string         `json:"id"`
			Namespace string         `json:"namespace"`
			Vector    []float32      `json:"vector"`
			Metadata  map[string]any `json:"metadata"`
		}{rec.ID, namespace, rec.Vector, rec.Metadata}); err != nil {
			return err
		}
	}
	return nil
}

// readChunks splits a text file into paragraphs separated by blank lines.
func readChunks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		chunks  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return chunks, nil
}

func (r *runner) ingestCommand(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("at least one file is required")
	}

	docs := make([]ingestion.Document, len(paths))
	for i, path := range paths {
		chunks, err := readChunks(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs[i] = ingestion.Document{
			PatientID: c.String("patient"),
			Source:    filepath.Base(path),
			Chunks:    chunks,
		}
	}

	var w io.Writer = r.out
	if out := c.String("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	a, err := r.openAssistant()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []ingestion.Option{
		ingestion.WithPoolSize(c.Int("workers")),
		ingestion.WithRetry(c.Int("max-retries"), time.Second),
	}
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithMonitor(ingestion.NewProgressTracker(c.App.ErrWriter)))
	}

	pipeline, err := a.NewIngestionPipeline(&jsonlIndex{enc: json.NewEncoder(w)}, opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	reports, err := pipeline.Ingest(c.Context, docs...)
	for _, rep := range reports {
		if rep.Namespace == "" {
			continue
		}
		slog.Info("ingested document", "source", rep.Source, "namespace", rep.Namespace,
			"records", rep.Records, "backend", rep.Backend, "dimension", rep.Dimension)
	}
	return err
}
