package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/tasks"
)

func controlPoint(mode tasks.ControlMode) tasks.ControlPoint {
	return tasks.ControlPoint{
		Mode:      mode,
		Page:      1,
		BatchSize: 10,
		Run:       models.RunMetadata{Total: 20, Processed: 10},
	}
}

func TestPromptControl(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  tasks.Decision
	}{
		{"Enter Continues", "\n", tasks.Decision{Continue: true}},
		{"Y Continues", "y\n", tasks.Decision{Continue: true}},
		{"Q Stops", "q\n", tasks.Decision{Continue: false}},
		{"Batch Resize", "b 25\n", tasks.Decision{Continue: true, BatchSize: 25}},
		{"Invalid Then Continue", "b zero\n\n", tasks.Decision{Continue: true}},
		{"Garbage Then Stop", "wat\nq\n", tasks.Decision{Continue: false}},
		{"Closed Stdin Stops", "", tasks.Decision{Continue: false}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: &bytes.Buffer{},
				Input:  strings.NewReader(tc.input),
			})

			got := runner.promptControl()(controlPoint(tasks.ControlBatchComplete))
			if got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}

	t.Run("Page Error Shows Failure", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output: output,
			Input:  strings.NewReader("\n"),
		})

		point := controlPoint(tasks.ControlPageError)
		runner.promptControl()(point)

		if !strings.Contains(output.String(), "Failed to fetch page") {
			t.Errorf("expected failure notice, got: %s", output.String())
		}
	})
}
