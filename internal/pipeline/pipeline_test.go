package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/load"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

func newTestPipeline() *Pipeline {
	cfg := model.DefaultConfig()
	cfg.Concurrency.Workers = 3
	return NewPipeline(cfg, nil)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func errorsFor(result *model.Result, file string, line int) []model.ValidationError {
	var out []model.ValidationError
	for _, e := range result.Errors {
		if e.File == file && e.Line == line {
			out = append(out, e)
		}
	}
	return out
}

func TestValidate_CleanDataset(t *testing.T) {
	dir := writeDataset(t, nil)

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	assert.False(t, result.Report.HasErrors)
	assert.Len(t, result.Validated, 7)
	assert.Equal(t, filepath.Join(dir, "validated_output"), result.OutputDir)

	for _, name := range catalog.Default().Names() {
		fc := result.Report.FileCounts[name]
		assert.Equal(t, model.StatusValidated, fc.Status, name)
		assert.Equal(t, fc.Total, fc.Retained, name)
	}
}

func TestValidate_MissingOrgsIsFatal(t *testing.T) {
	dir := writeDataset(t, map[string]string{catalog.Orgs: ""})

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.Error(t, err)

	var missing *load.MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, catalog.Orgs, missing.File)

	require.NotNil(t, result)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, model.KindMissingFile, result.Errors[0].Kind)

	// nothing written
	_, statErr := os.Stat(filepath.Join(dir, "validated_output"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, model.DefaultReportFile))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, model.DefaultRemovedFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidate_UppercaseEmailRemoved(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.Users: usersHeader + "\n" +
			"t1,teacher1,Taro,Yamada,,,taro@example.com,,\n" +
			"s1,student1,Hanako,Sato,,,hanako@example.com,,\n" +
			"s2,student2,Jiro,Suzuki,,,jiro@example.com,,\n" +
			"x1,xuser,Foo,Bar,,,Foo@Example.com,,\n",
	})

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.NoError(t, err)

	errs := errorsFor(result, catalog.Users, 5)
	require.Len(t, errs, 1)
	assert.Equal(t, model.KindFormat, errs[0].Kind)
	assert.Equal(t, "email", errs[0].Field)
	assert.Contains(t, errs[0].Message, "Foo@Example.com")

	removed := result.Removed[catalog.Users]
	require.Len(t, removed, 1)
	assert.Equal(t, 5, removed[0].Line)
	assert.Len(t, result.Retained[catalog.Users], 3)
}

func TestValidate_RolesReferencingMissingUser(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.Roles: rolesHeader + "\n" +
			"t1,school1,teacher,,,,,\n" +
			"U1,school1,student,,,,,\n" +
			"U1,school1,student,,,,,\n",
	})

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.NoError(t, err)

	for _, line := range []int{3, 4} {
		errs := errorsFor(result, catalog.Roles, line)
		require.Len(t, errs, 1, "line %d", line)
		assert.Equal(t, model.KindReference, errs[0].Kind)
		assert.Contains(t, errs[0].Message, "users.csv")
		assert.Contains(t, errs[0].Message, "U1")
	}

	removed := result.Removed[catalog.Roles]
	require.Len(t, removed, 2)
	assert.Equal(t, 3, removed[0].Line)
	assert.Equal(t, 4, removed[1].Line)
}

func TestValidate_SDSV21Headers(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.Enrollments: enrollV21Header + "\n" +
			"e1,class1,t1,teacher\n" +
			"e2,class1,s1,student\n",
		catalog.Roles: rolesV21Header + "\n" +
			"r1,t1,school1,teacher,term1\n" +
			"r2,s1,school1,student,\n",
	})

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.NoError(t, err)

	for _, e := range result.Errors {
		assert.NotEqual(t, model.KindHeader, e.Kind, "unexpected header error: %v", e)
	}
	assert.Equal(t, catalog.VariantSDSV21, result.Report.FileCounts[catalog.Enrollments].Variant)
	assert.Equal(t, catalog.VariantSDSV21, result.Report.FileCounts[catalog.Roles].Variant)
	assert.Empty(t, result.Errors)

	records := readCSV(t, filepath.Join(result.OutputDir, catalog.Enrollments))
	assert.Equal(t, strings.Split(enrollV21Header, ","), records[0])
}

func TestValidate_DuplicateOrg(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.Orgs: orgsHeader + "\n" +
			"ORG1,First,school,\n" +
			"ORG1,Second,school,\n" +
			"school1,North High,school,\n",
		catalog.Classes: "", catalog.Courses: "",
	})

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.NoError(t, err)

	retained := result.Retained[catalog.Orgs]
	require.Len(t, retained, 2)
	assert.Equal(t, 2, retained[0].Line)
	assert.Equal(t, "First", retained[0].Get("name"))

	removed := result.Removed[catalog.Orgs]
	require.Len(t, removed, 1)
	assert.Equal(t, 3, removed[0].Line)

	errs := errorsFor(result, catalog.Orgs, 3)
	require.Len(t, errs, 1)
	assert.Equal(t, model.KindDuplicateKey, errs[0].Kind)
}

func TestValidate_HeaderErrorExcludesFile(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.Courses: "id,title\nc1,Math\n",
	})

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.NoError(t, err)

	fc := result.Report.FileCounts[catalog.Courses]
	assert.Equal(t, model.StatusRejected, fc.Status)
	assert.Equal(t, 1, fc.Total)
	assert.NotContains(t, result.Validated, catalog.Courses)

	_, statErr := os.Stat(filepath.Join(result.OutputDir, catalog.Courses))
	assert.True(t, os.IsNotExist(statErr), "rejected file must not be written")

	// class1 references course1, which now has an empty index
	errs := errorsFor(result, catalog.Classes, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, "courseSourcedId", errs[0].Field)

	// enrollments into class1 are unaffected in a single pass
	assert.Empty(t, result.Removed[catalog.Enrollments])
}

func TestValidate_SkippedOptionalFilesBypassRules(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.AcademicSessions: "",
		catalog.Courses:          "",
	})

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.NoError(t, err)

	assert.Empty(t, result.Errors, "references into absent optional files are not checked")
	assert.ElementsMatch(t, []string{catalog.AcademicSessions, catalog.Courses}, result.Report.Skipped)
	assert.Equal(t, model.StatusSkipped, result.Report.FileCounts[catalog.Courses].Status)
}

func TestValidate_Invariants(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.Users: usersHeader + "\n" +
			"t1,teacher1,Taro,Yamada,,,taro@example.com,+819012345678,\n" +
			"s1,student1,Hanako,Sato,,,HANAKO@example.com,,\n" +
			"s2,,Jiro,Suzuki,,,jiro@example.com,0312345678,\n" +
			"t1,dup,Dup,Dup,,,dup@example.com,,\n",
		catalog.Roles: rolesHeader + "\n" +
			"t1,school1,teacher,term1,,maybe,2024-02-30,\n" +
			"s1,school1,student,,,,,\n" +
			"s2,nowhere,student,termX,,,,\n" +
			"t1,school1,teacher,,,,,\n",
	})

	result, err := newTestPipeline().Validate(context.Background(), dir)
	require.NoError(t, err)
	require.NotEmpty(t, result.Errors)

	for _, name := range result.Validated {
		src := readCSV(t, filepath.Join(dir, name))
		total := len(src) - 1

		seen := make(map[int]string)
		for _, r := range result.Retained[name] {
			seen[r.Line] = "retained"
		}
		for _, r := range result.Removed[name] {
			_, dup := seen[r.Line]
			assert.False(t, dup, "%s line %d both retained and removed", name, r.Line)
			seen[r.Line] = "removed"

			assert.NotEmpty(t, r.Reasons)
			assert.NotEmpty(t, errorsFor(result, name, r.Line), "%s line %d removed without error", name, r.Line)
		}
		assert.Len(t, seen, total, name)

		// retained order
		for i := 1; i < len(result.Retained[name]); i++ {
			assert.Less(t, result.Retained[name][i-1].Line, result.Retained[name][i].Line)
		}

		// output header and column order
		out := readCSV(t, filepath.Join(result.OutputDir, name))
		assert.Equal(t, src[0], out[0], name)
		assert.Len(t, out, len(result.Retained[name])+1, name)
	}

	// single pass: users row s1 removed for format, so role s1 fails its reference
	roleErrs := errorsFor(result, catalog.Roles, 3)
	require.Len(t, roleErrs, 1)
	assert.Equal(t, model.KindReference, roleErrs[0].Kind)

	// accumulated findings on one row
	assert.Len(t, errorsFor(result, catalog.Roles, 2), 2)
	assert.Len(t, errorsFor(result, catalog.Roles, 4), 3)
}

func TestValidate_Idempotent(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.Users: usersHeader + "\n" +
			"t1,teacher1,Taro,Yamada,,,taro@example.com,,\n" +
			"s1,student1,Hanako,Sato,,,Hanako@Example.com,,\n" +
			"s2,student2,Jiro,Suzuki,,,jiro@example.com,,\n",
	})

	p := newTestPipeline()
	first, err := p.Validate(context.Background(), dir)
	require.NoError(t, err)
	require.NotEmpty(t, first.Errors)

	second, err := p.Validate(context.Background(), first.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, second.Errors)

	for _, name := range first.Validated {
		a := readCSV(t, filepath.Join(first.OutputDir, name))
		b := readCSV(t, filepath.Join(second.OutputDir, name))
		assert.Equal(t, a, b, name)
	}
}

func TestValidate_ArtifactsOnDisk(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		catalog.Orgs: orgsHeader + "\n" +
			"district1,North District,district,\n" +
			"school1,North High,school,district1\n" +
			"school2,,school,\n",
	})

	cfg := model.DefaultConfig()
	cfg.Output.MarkdownFile = "report.md"
	result, err := NewPipeline(cfg, nil).Validate(context.Background(), dir)
	require.NoError(t, err)

	var removed map[string][]struct {
		Line    int               `json:"line"`
		Fields  map[string]string `json:"fields"`
		Reasons []string          `json:"reasons"`
	}
	data, err := os.ReadFile(result.RemovedPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &removed))
	require.Len(t, removed[catalog.Orgs], 1)
	assert.Equal(t, 4, removed[catalog.Orgs][0].Line)
	assert.Equal(t, "school2", removed[catalog.Orgs][0].Fields["sourcedId"])
	assert.Equal(t, []string{"Required field name missing"}, removed[catalog.Orgs][0].Reasons)

	// fields keep column order on disk
	assert.True(t, strings.Index(string(data), `"sourcedId"`) < strings.Index(string(data), `"parentSourcedId"`))

	var report struct {
		HasErrors  bool `json:"hasErrors"`
		FileCounts map[string]struct {
			Total    int `json:"total"`
			Retained int `json:"retained"`
			Removed  int `json:"removed"`
		} `json:"fileCounts"`
		Errors []struct {
			File    string `json:"file"`
			Line    int    `json:"line"`
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	data, err = os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &report))
	assert.True(t, report.HasErrors)
	assert.Equal(t, 3, report.FileCounts[catalog.Orgs].Total)
	assert.Equal(t, 2, report.FileCounts[catalog.Orgs].Retained)
	assert.Equal(t, 1, report.FileCounts[catalog.Orgs].Removed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "name", report.Errors[0].Field)

	md, err := os.ReadFile(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "| orgs.csv | validated | canonical | 3 | 2 | 1 |")
}

func TestValidate_OutputDirMustDifferFromInput(t *testing.T) {
	dir := writeDataset(t, nil)

	cfg := model.DefaultConfig()
	cfg.Output.Dir = "."
	_, err := NewPipeline(cfg, nil).Validate(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overwrite the input")
}

func TestValidate_StaleOutputRemoved(t *testing.T) {
	dir := writeDataset(t, nil)
	p := newTestPipeline()

	first, err := p.Validate(context.Background(), dir)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(first.OutputDir, catalog.Courses))

	require.NoError(t, os.Remove(filepath.Join(dir, catalog.Courses)))
	second, err := p.Validate(context.Background(), dir)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(second.OutputDir, catalog.Courses))
}
