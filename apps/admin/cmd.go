package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/gradebook/core/grade"
	jsonstore "github.com/trezcool/gradebook/storage/jsonfile"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type gradeService interface {
	grade.ServiceInterface
	EnsureSeeded(ctx context.Context) (bool, error)
}

type commandLine struct {
	gradeSvc gradeService
	out      io.Writer
	outFd    int
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  seed - write the sample grades if the store does not exist yet")
	fmt.Fprintln(cli.out, "  add -student NAME -subject SUBJECT -grade GRADE - record a grade")
	fmt.Fprintln(cli.out, "  list - print every grade (a table on a terminal, JSON otherwise)")
	fmt.Fprintln(cli.out, "  stats - print the grade statistics")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addCmd := flag.NewFlagSet("add", flag.ContinueOnError)
	addCmd.SetOutput(cli.out)
	addStudent := addCmd.String("student", "", "The student's name.")
	addSubject := addCmd.String("subject", "", "The subject.")
	addGrade := addCmd.String("grade", "", "The grade: a JSON value (5, 4.5, true) or plain text.")

	ctx := context.Background()
	switch args[1] {
	case "seed":
		return cli.seed(ctx)
	case "add":
		if err := addCmd.Parse(args[2:]); err != nil {
			if err == flag.ErrHelp {
				return errHelp
			}
			return err
		}
		if *addStudent == "" && *addSubject == "" && *addGrade == "" {
			addCmd.Usage()
			return errHelp
		}
		return cli.add(ctx, *addStudent, *addSubject, *addGrade)
	case "list":
		return cli.list(ctx)
	case "stats":
		return cli.stats(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) seed(ctx context.Context) error {
	seeded, err := cli.gradeSvc.EnsureSeeded(ctx)
	if err != nil {
		return err
	}
	if seeded {
		fmt.Fprintf(cli.out, "store seeded with %d grades\n", len(grade.SeedGrades()))
	} else {
		fmt.Fprintln(cli.out, "store already exists, nothing to do")
	}
	return nil
}

// parseScore reads raw as a JSON value, falling back to plain text. An empty raw is an absent score.
func parseScore(raw string) (grade.Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return grade.Value{}, nil
	}
	if json.Valid([]byte(raw)) {
		var v grade.Value
		if err := v.UnmarshalJSON([]byte(raw)); err != nil {
			return grade.Value{}, err
		}
		return v, nil
	}
	return grade.ValueFrom(raw)
}

// textValue stores s as a JSON string; an empty s is absent.
func textValue(s string) (grade.Value, error) {
	if s == "" {
		return grade.Value{}, nil
	}
	return grade.ValueFrom(s)
}

func (cli *commandLine) add(ctx context.Context, student, subject, rawGrade string) error {
	score, err := parseScore(rawGrade)
	if err != nil {
		return pkgerrors.Wrap(err, "parsing grade")
	}
	name, err := textValue(student)
	if err != nil {
		return pkgerrors.Wrap(err, "parsing student")
	}
	sub, err := textValue(subject)
	if err != nil {
		return pkgerrors.Wrap(err, "parsing subject")
	}
	g, err := cli.gradeSvc.Append(ctx, grade.NewGrade{StudentName: name, Subject: sub, Score: score})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "grade %d added\n", g.ID)
	return nil
}

func (cli *commandLine) list(ctx context.Context) error {
	coll, err := cli.gradeSvc.List(ctx)
	if err != nil {
		return err
	}

	if !isTerminalFunc(cli.outFd) {
		data, err := jsonstore.Marshal(coll)
		if err != nil {
			return err
		}
		_, err = cli.out.Write(data)
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTUDENT\tSUBJECT\tGRADE\tDATE")
	for _, g := range coll.Grades {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", g.ID, g.StudentName, g.Subject, g.Score, g.Date)
	}
	return w.Flush()
}

func (cli *commandLine) stats(ctx context.Context) error {
	stats, err := cli.gradeSvc.Stats(ctx)
	if err != nil {
		if pkgerrors.Cause(err) == grade.ErrNoData {
			fmt.Fprintln(cli.out, "No data")
			return nil
		}
		return err
	}

	subjects := make([]string, 0, len(stats.Subjects))
	for _, s := range stats.Subjects {
		if s.Valid {
			subjects = append(subjects, s.String())
		} else {
			subjects = append(subjects, "(none)")
		}
	}
	fmt.Fprintf(cli.out, "students: %d\n", stats.TotalStudents)
	fmt.Fprintf(cli.out, "grades:   %d\n", stats.TotalGrades)
	fmt.Fprintf(cli.out, "average:  %v\n", stats.AverageGrade)
	fmt.Fprintf(cli.out, "subjects: %s\n", strings.Join(subjects, ", "))
	return nil
}
