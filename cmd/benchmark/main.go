package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/limaJavier/satkit/pkg/output"
	"github.com/limaJavier/satkit/pkg/sat"
)

const (
	executablePath             = "../../bin/satkit"
	satisfiableTestDirectory   = "../../test/cnfs/satisfiable/"
	unsatisfiableTestDirectory = "../../test/cnfs/unsatisfiable/"
	KB                         = 1024
)

type VariantType int

const (
	complete VariantType = iota
	completeDrat
	localSearch
	parallelLocalSearch
)

var variantTypes = map[VariantType]string{
	complete:            "complete",
	completeDrat:        "complete+drat",
	localSearch:         "local-search",
	parallelLocalSearch: "parallel-local-search",
}

type TestMetadata struct {
	Name        string
	Satisfiable bool
	Variables   uint64
	Clauses     int
	Instance    sat.SAT
}

type BenchmarkResult struct {
	Variant       VariantType
	Test          TestMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Status        string
}

func main() {
	tests := getTests()
	variants := getVariants()
	results := make([]BenchmarkResult, 0, len(tests)*len(variants))

	proofDirectory, err := os.MkdirTemp("", "satkit-benchmark-")
	if err != nil {
		log.Fatalf("cannot create proof directory: %v", err)
	}
	defer os.RemoveAll(proofDirectory)

	for _, test := range tests {
		for _, variant := range variants {
			log.Infof("Benchmarking test \"%v\" with variant \"%v\"", test.Name, variantTypes[variant])

			duration, maxMemory, cpuPercentage, status := measure(variant, test, proofDirectory)

			results = append(results, BenchmarkResult{
				Variant:       variant,
				Test:          test,
				Duration:      duration,
				Memory:        maxMemory,
				CpuPercentage: cpuPercentage,
				Status:        status,
			})
		}
	}

	toCsv(results)
}

func getTests() []TestMetadata {
	tests := make([]TestMetadata, 0)
	for _, tuple := range lo.Zip2([]string{satisfiableTestDirectory, unsatisfiableTestDirectory}, []bool{true, false}) {
		directory, satisfiable := tuple.A, tuple.B
		testFiles, err := os.ReadDir(directory)
		if err != nil {
			log.Fatalf("cannot read directory: %v", err)
		}

		for _, file := range testFiles {
			filename := directory + file.Name()
			instance, err := sat.ParseDIMACSFile(filename)
			if err != nil {
				log.Fatalf("cannot parse input file: %v", err)
			}

			tests = append(tests, TestMetadata{
				Name:        filename,
				Satisfiable: satisfiable,
				Variables:   instance.Variables,
				Clauses:     len(instance.Clauses),
				Instance:    instance,
			})
		}
	}

	return tests
}

func getVariants() []VariantType {
	return []VariantType{complete, completeDrat, localSearch, parallelLocalSearch}
}

func variantArgs(variant VariantType, testFile, proofDirectory string) []string {
	args := []string{"rsat"}
	switch variant {
	case complete:
		args = append(args, "--alg", "1")
	case completeDrat:
		proofPath := filepath.Join(proofDirectory, filepath.Base(testFile)+".drat")
		args = append(args, "--alg", "1", "--drat", proofPath)
	case localSearch:
		args = append(args, "--alg", "2")
	case parallelLocalSearch:
		args = append(args, "--alg", "2", "--parallel")
	}
	return append(args, testFile)
}

func measure(variant VariantType, test TestMetadata, proofDirectory string) (duration int64, maxMemory float32, cpuPercentage int64, status string) {
	testFile := test.Name
	args := append([]string{"-v", executablePath}, variantArgs(variant, testFile, proofDirectory)...)
	cmd := exec.Command("/usr/bin/time", args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		log.Fatalf("an error occurred during the execution of \"satkit\" at test \"%v\" using variant \"%v\": %v\n%v", testFile, variantTypes[variant], err, stdErr.String())
	}
	solution, err := output.Parse(stdOut.String())
	if err != nil {
		log.Fatalf("cannot read the result of test \"%v\" using variant \"%v\": %v", testFile, variantTypes[variant], err)
	}
	if solution.Status == sat.Sat && !sat.AssertSATSolution(test.Instance, solution.Literals()) {
		log.Fatalf("invalid model for test \"%v\" using variant \"%v\"", testFile, variantTypes[variant])
	}
	status = solution.Status.String()

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage, status
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create("benchmark_results.csv")
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Variant", "Test", "Satisfiable", "Variables", "Clauses", "Duration(ms)", "Memory(MB)", "CPU(%)", "Status"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			variantTypes[result.Variant],
			result.Test.Name,
			fmt.Sprintf("%v", result.Test.Satisfiable),
			fmt.Sprintf("%d", result.Test.Variables),
			fmt.Sprintf("%d", result.Test.Clauses),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.CpuPercentage),
			result.Status,
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / KB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
