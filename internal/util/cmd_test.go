package util

import (
	"bufio"
	"strings"
	"testing"
)

func TestScanLinesCR(t *testing.T) {
	in := "frame=1 time=00:00:01.00\rframe=2 time=00:00:02.00\r\nStream mapping:\nlast"
	sc := bufio.NewScanner(strings.NewReader(in))
	sc.Split(ScanLinesCR)

	var got []string
	for sc.Scan() {
		got = append(got, sc.Text())
	}
	want := []string{"frame=1 time=00:00:01.00", "frame=2 time=00:00:02.00", "Stream mapping:", "last"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestShellQuote(t *testing.T) {
	got := ShellQuote("/usr/bin/ffmpeg", []string{"-i", "my clip.mov", "-vf", "fps=15", "it's.mp4"})
	want := `/usr/bin/ffmpeg -i 'my clip.mov' -vf fps=15 'it'\''s.mp4'`
	if got != want {
		t.Errorf("ShellQuote() = %s, want %s", got, want)
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("ExitCode(nil) != 0")
	}
	if ExitCode(errTest{}) != -1 {
		t.Error("ExitCode(non-exit error) != -1")
	}
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
