// Command labctl is the operator tool for labrank: it hashes the admin
// password for ADMIN_PASS_HASH and ranks a CSV of applicants offline.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-labrank/internal/ranking"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "hash":
		err = runHash(args[1:], stdout, stderr)
	case "rank":
		err = runRank(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return 2
	}
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage:
  labctl hash [-cost N] PASSWORD
  labctl rank [-capacity N] FILE.csv   (columns: id,gpa; "-" reads stdin)`)
}

func runHash(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cost := fs.Int("cost", 12, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("hash: exactly one password required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(fs.Arg(0)), *cost)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(h))
	return nil
}

func runRank(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	fs.SetOutput(stderr)
	capacity := fs.Int("capacity", 1, "lab capacity; values below 1 count as 1")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("rank: exactly one input file required")
	}

	in := io.Reader(os.Stdin)
	if name := fs.Arg(0); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	apps, err := readApplications(in)
	if err != nil {
		return err
	}

	ranked := ranking.Rank(*capacity, apps)
	scale := ranking.ComputeScale(ranked, *capacity)
	return printRanking(stdout, ranked, scale, ranking.NormalizeCapacity(*capacity))
}

// readApplications reads id,gpa rows. A header row is skipped when its gpa
// column is not a number.
func readApplications(r io.Reader) ([]ranking.Application, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var out []ranking.Application
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: want id,gpa", line)
		}
		gpa, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: gpa %q: %w", line, rec[1], err)
		}
		out = append(out, ranking.Application{Identity: strings.TrimSpace(rec[0]), GPA: gpa})
	}
	return out, nil
}

func printRanking(w io.Writer, ranked []ranking.RankedApplicant, scale ranking.Scale, capacity int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tGPA\tPOSITION\tADMIT")
	for _, r := range ranked {
		admit := ""
		if r.WithinCapacity {
			admit = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.1f\t%s\n", r.Rank, r.Identity, r.GPA, scale.Position(r.GPA), admit)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\ncapacity %d, applicants %d, scale %.2f to %.2f (mid %.2f)\n",
		capacity, len(ranked), scale.Min, scale.Max, scale.Midpoint())
	if scale.HasBoundary() {
		fmt.Fprintf(w, "boundary: rank %d, %s, gpa %.2f at %.1f\n",
			scale.Boundary.Rank, scale.Boundary.Identity, scale.Boundary.GPA, scale.BoundaryPosition)
	} else {
		fmt.Fprintln(w, "boundary: none (all applicants within capacity)")
	}
	return nil
}
