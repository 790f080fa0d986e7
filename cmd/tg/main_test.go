package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vanderheijden86/tourguide/pkg/model"
	"github.com/vanderheijden86/tourguide/pkg/store"
	"github.com/vanderheijden86/tourguide/pkg/testutil"
	"github.com/vanderheijden86/tourguide/pkg/tour"
	"github.com/vanderheijden86/tourguide/pkg/version"
)

// isolate points config and progress at a temp dir.
func isolate(t *testing.T) (configPath, storeDir string) {
	t.Helper()
	dir := t.TempDir()
	storeDir = filepath.Join(dir, "state")
	t.Setenv("TG_STORE_BACKEND", "file")
	t.Setenv("TG_STORE_PATH", storeDir)
	t.Setenv("TG_TOURS", "")
	return filepath.Join(dir, "config.yaml"), storeDir
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("tg %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	got := execute(t, "version")
	if got != "tg "+version.Version+"\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestToursListsBuiltinCatalog(t *testing.T) {
	cfg, _ := isolate(t)
	out := execute(t, "--config", cfg, "tours")
	for _, id := range []string{"welcome", "finance-basics", "career-launch", "wellness-checkin"} {
		if !strings.Contains(out, id) {
			t.Errorf("tours output missing %s:\n%s", id, out)
		}
	}
	if strings.Contains(out, "✓") {
		t.Error("nothing should be completed yet")
	}
}

func TestNameStatusAndReset(t *testing.T) {
	cfg, storeDir := isolate(t)

	seed, err := store.NewFileStore(storeDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := seed.SaveCompleted([]string{"welcome"}); err != nil {
		t.Fatal(err)
	}

	if out := execute(t, "--config", cfg, "name", "Ada"); !strings.Contains(out, "Hi Ada!") {
		t.Errorf("name output = %q", out)
	}

	out := execute(t, "--config", cfg, "status")
	if !strings.Contains(out, "Ada") {
		t.Errorf("status should show the name:\n%s", out)
	}
	if !strings.Contains(out, "1/4 (welcome)") {
		t.Errorf("status should show one completed tour:\n%s", out)
	}

	if out := execute(t, "--config", cfg, "tours"); !strings.Contains(out, "✓ welcome") {
		t.Errorf("tours should mark welcome:\n%s", out)
	}

	execute(t, "--config", cfg, "reset")
	out = execute(t, "--config", cfg, "status")
	if !strings.Contains(out, "0/4") {
		t.Errorf("reset should clear completions:\n%s", out)
	}
	if !strings.Contains(out, "Ada") {
		t.Errorf("reset must keep the name:\n%s", out)
	}
}

func TestToursFromConfiguredFiles(t *testing.T) {
	cfg, _ := isolate(t)
	dir := t.TempDir()
	gen := testutil.New(testutil.DefaultConfig())
	tours := gen.Tours(3, 2)
	testutil.WriteTourFile(t, dir, "tours.yaml", tours...)
	t.Setenv("TG_TOURS", dir)

	out := execute(t, "--config", cfg, "tours")
	for _, tr := range tours {
		if !strings.Contains(out, tr.ID) {
			t.Errorf("missing %s:\n%s", tr.ID, out)
		}
	}
	if strings.Contains(out, "welcome") {
		t.Error("configured files replace the builtin catalog")
	}
}

func TestLoadRegistry_InvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTourFile(t, dir, "bad.yaml", model.Tour{ID: "empty"})
	if _, err := loadRegistry(context.Background(), []string{dir}, zap.NewNop()); err == nil {
		t.Error("a tour without steps should fail the load")
	}
}

func TestNameWithoutTerminalNeedsArgument(t *testing.T) {
	cfg, _ := isolate(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", cfg, "name"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error without a name or a terminal")
	}
}

type recordingDriver struct {
	calls []string
}

func (d *recordingDriver) NextStep()      { d.calls = append(d.calls, "next") }
func (d *recordingDriver) PrevStep()      { d.calls = append(d.calls, "prev") }
func (d *recordingDriver) SkipTour()      { d.calls = append(d.calls, "skip") }
func (d *recordingDriver) EndTour()       { d.calls = append(d.calls, "end") }
func (d *recordingDriver) RestartTour()   { d.calls = append(d.calls, "restart") }
func (d *recordingDriver) GoToStep(i int) { d.calls = append(d.calls, "goto "+string(rune('0'+i))) }

func TestDriveFromInput(t *testing.T) {
	in := strings.NewReader("n\n\np\ng 3\ng\ng x\nbogus\nr\ns\ne\nq\nn\n")
	var out bytes.Buffer
	d := &recordingDriver{}

	if err := driveFromInput(in, &out, d); err != nil {
		t.Fatal(err)
	}

	want := []string{"next", "prev", "goto 2", "restart", "skip", "end"}
	if strings.Join(d.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", d.calls, want)
	}
	for _, msg := range []string{"usage: g N", `not a step number: "x"`, `unknown command "bogus"`} {
		if !strings.Contains(out.String(), msg) {
			t.Errorf("output missing %q:\n%s", msg, out.String())
		}
	}
}

func TestWriteState(t *testing.T) {
	var buf bytes.Buffer
	writeState(&buf, tour.State{
		Active:     true,
		TourID:     "welcome",
		StepIndex:  1,
		TotalSteps: 3,
		Step:       &model.Step{Title: "Find your way", Content: "The nav bar."},
	})
	writeState(&buf, tour.State{Pending: "finance-basics"})
	writeState(&buf, tour.State{})

	want := "[welcome 2/3] Find your way\n  The nav bar.\nopening finance-basics…\nno tour running\n"
	if buf.String() != want {
		t.Errorf("got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteTours_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeTours(&buf, nil)
	if !strings.Contains(buf.String(), "No tours configured") {
		t.Errorf("got %q", buf.String())
	}
}
