package testutil

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/table"
)

// Students builds a deterministic student performance table. The exam score
// is a rounded linear function of study hours, attendance and motivation.
// Every row with i%10 == 9 misses Parental_Education_Level and every row with
// i%7 == 3 misses Teacher_Quality.
func Students(rows int) *table.Table {
	levels := []string{"Low", "Medium", "High"}
	distances := []string{"Near", "Moderate", "Far"}
	genders := []string{"Female", "Male"}

	hours := make([]float64, rows)
	attendance := make([]float64, rows)
	motivation := make([]string, rows)
	parental := make([]string, rows)
	teacher := make([]string, rows)
	distance := make([]string, rows)
	gender := make([]string, rows)
	score := make([]float64, rows)

	for i := range rows {
		hours[i] = float64(5 + (i*7)%25)
		attendance[i] = float64(60 + (i*13)%40)
		motivation[i] = levels[i%3]
		parental[i] = levels[(i/3)%3]
		teacher[i] = levels[(i+1)%3]
		distance[i] = distances[(i/2)%3]
		gender[i] = genders[i%2]
		score[i] = math.Round(40 + 0.9*hours[i] + 0.3*attendance[i] + 2*float64(i%3))
		if i%10 == 9 {
			parental[i] = ""
		}
		if i%7 == 3 {
			teacher[i] = ""
		}
	}

	return table.MustNew(
		table.NewNumeric("Hours_Studied", hours),
		table.NewNumeric("Attendance", attendance),
		table.NewCategorical("Motivation_Level", motivation),
		table.NewCategorical("Parental_Education_Level", parental),
		table.NewCategorical("Teacher_Quality", teacher),
		table.NewCategorical("Distance_from_Home", distance),
		table.NewCategorical("Gender", gender),
		table.NewNumeric("Exam_Score", score),
	)
}

// StudentsCSV renders Students(rows) as CSV text.
func StudentsCSV(rows int) string {
	var buf bytes.Buffer
	if err := Students(rows).WriteCSV(&buf); err != nil {
		panic(err)
	}
	return buf.String()
}

// WriteStudentsCSV writes Students(rows) to a CSV file under dir and returns
// its path.
func WriteStudentsCSV(t *testing.T, dir string, rows int) string {
	t.Helper()
	path := filepath.Join(dir, "StudentPerformanceFactors.csv")
	require.NoError(t, os.WriteFile(path, []byte(StudentsCSV(rows)), 0o644))
	return path
}
