package core

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const taskHeader = "Client Name,Task Category,Sub Category,Status,Comment,Assigned Name," +
	"Due Date,Assignment Date,Completion Date,Bill,Advance Received,Outstanding Amount,Payment Status"

func TestParseTaskCSV_FullRow(t *testing.T) {
	text := taskHeader + "\n" +
		`ABC Corp,Design,Logo Design,In Progress,"Draft, v2",John Doe,2026-03-15,03/01/2026,,"$5,000.99",2000,3000,Partially Paid`

	got := ParseTaskCSV(text)
	if len(got.Errors) != 0 {
		t.Fatalf("Errors = %v", got.Errors)
	}
	if len(got.Data) != 1 {
		t.Fatalf("len(Data) = %d, want 1", len(got.Data))
	}

	row := got.Data[0]
	want := TaskImportRow{
		Client:            "ABC Corp",
		TaskCategory:      "Design",
		SubCategory:       "Logo Design",
		Status:            "In Progress",
		PaymentStatus:     "Partially Paid",
		AssigneeName:      "John Doe",
		Comment:           "Draft, v2",
		DueDate:           time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		AssignmentDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CompletionDate:    EpochZero,
		Bill:              5000,
		AdvanceReceived:   2000,
		OutstandingAmount: 3000,
	}
	if row != want {
		t.Errorf("row = %+v\nwant  %+v", row, want)
	}
}

func TestParseTaskCSV_Defaults(t *testing.T) {
	text := "Client Name,Task Category,Sub Category\nACME,Audit,Quarterly\n"
	got := ParseTaskCSV(text)

	if len(got.Data) != 1 {
		t.Fatalf("len(Data) = %d, want 1 (errors: %v)", len(got.Data), got.Errors)
	}
	row := got.Data[0]

	if row.Status != DefaultTaskStatus {
		t.Errorf("Status = %q, want %q", row.Status, DefaultTaskStatus)
	}
	if row.PaymentStatus != DefaultPaymentStatus {
		t.Errorf("PaymentStatus = %q, want %q", row.PaymentStatus, DefaultPaymentStatus)
	}
	if row.AssigneeName != "" || row.CaptainName != "" || row.Comment != "" {
		t.Errorf("optional strings not empty: %+v", row)
	}
	if !row.DueDate.Equal(EpochZero) || !row.AssignmentDate.Equal(EpochZero) || !row.CompletionDate.Equal(EpochZero) {
		t.Errorf("dates not EpochZero: %+v", row)
	}
	if row.Bill != 0 || row.AdvanceReceived != 0 || row.OutstandingAmount != 0 {
		t.Errorf("amounts not zero: %+v", row)
	}
}

func TestParseTaskCSV_OversizedAmountsClamp(t *testing.T) {
	text := taskHeader + "\nACME,Audit,Quarterly,,,,,,,99999999999999999999,\"9,223,372,036,854,775,808\",12,\n"
	got := ParseTaskCSV(text)

	if len(got.Data) != 1 {
		t.Fatalf("len(Data) = %d, want 1 (errors: %v)", len(got.Data), got.Errors)
	}
	row := got.Data[0]
	if row.Bill != math.MaxInt64 || row.AdvanceReceived != math.MaxInt64 {
		t.Errorf("Bill = %d, AdvanceReceived = %d, want both clamped to MaxInt64", row.Bill, row.AdvanceReceived)
	}
	if row.OutstandingAmount != 12 {
		t.Errorf("OutstandingAmount = %d, want 12", row.OutstandingAmount)
	}
	if row.Bill < 0 || row.AdvanceReceived < 0 || row.OutstandingAmount < 0 {
		t.Errorf("negative amount in %+v", row)
	}
}

func TestParseTaskCSV_InvalidDateKeepsRow(t *testing.T) {
	text := taskHeader + "\nACME,Audit,Quarterly,,,,not-a-date,,,,,,\n"
	got := ParseTaskCSV(text)

	if len(got.Errors) != 0 {
		t.Errorf("Errors = %v, want none", got.Errors)
	}
	if len(got.Data) != 1 {
		t.Fatalf("len(Data) = %d, want 1", len(got.Data))
	}
	if !got.Data[0].DueDate.Equal(EpochZero) {
		t.Errorf("DueDate = %v, want EpochZero", got.Data[0].DueDate)
	}
}

func TestParseTaskCSV_EveryRowMissingClient(t *testing.T) {
	text := taskHeader + "\n" +
		",Design,Logo,,,,,,,,,,\n" +
		",Audit,Quarterly,,,,,,,,,,\n"

	got := ParseTaskCSV(text)
	if len(got.Data) != 0 {
		t.Errorf("Data = %+v, want empty", got.Data)
	}
	if len(got.Errors) != 0 {
		t.Errorf("Errors = %v, want none (task rows are skipped silently)", got.Errors)
	}
	if got.Structural() {
		t.Error("Structural() = true, want false")
	}
	if err := got.Err(); !errors.Is(err, ErrNoValidRows) {
		t.Errorf("Err() = %v, want ErrNoValidRows", err)
	}
}

func TestParseTaskCSV_SkipsBadRowsKeepsGood(t *testing.T) {
	text := taskHeader + "\n" +
		"ACME,Audit,Quarterly\n" +
		"ACME,,Quarterly\n" +
		"short,row\n" +
		"Globex,Design,Web\n"

	got := ParseTaskCSV(text)
	if len(got.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(got.Data))
	}
	if got.Data[0].Client != "ACME" || got.Data[1].Client != "Globex" {
		t.Errorf("clients = %q, %q", got.Data[0].Client, got.Data[1].Client)
	}
}

func TestParseTaskCSV_MissingColumns(t *testing.T) {
	text := "Client Name,Status\nACME,Done\n"
	got := ParseTaskCSV(text)

	if len(got.Data) != 0 {
		t.Errorf("Data = %+v, want empty", got.Data)
	}
	want := []string{
		MissingColumnMessage(ColTaskCategory),
		MissingColumnMessage(ColSubCategory),
	}
	if strings.Join(got.Errors, "|") != strings.Join(want, "|") {
		t.Errorf("Errors = %q, want %q", got.Errors, want)
	}
	var se *StructuralError
	if !errors.As(got.Err(), &se) {
		t.Errorf("Err() = %v, want *StructuralError", got.Err())
	}
}

func TestParseTaskCSV_HeaderOnly(t *testing.T) {
	got := ParseTaskCSV(taskHeader + "\n\n")
	if len(got.Errors) != 1 || got.Errors[0] != msgNoDataRows {
		t.Errorf("Errors = %q, want %q", got.Errors, msgNoDataRows)
	}
	if !errors.Is(got.Err(), ErrEmptyFile) {
		t.Errorf("Err() = %v, want ErrEmptyFile", got.Err())
	}
}

func TestParseTasks_SubstringPolicy(t *testing.T) {
	text := "Client,Category,Sub-category,Task Status,Payment,Captain\n" +
		"ACME,Audit,Quarterly,Done,Paid,Zed\n"

	if got := ParseTasks(text, MatchExact); !got.Structural() {
		t.Errorf("exact policy should reject legacy header, got %+v", got)
	}

	got := ParseTasks(text, MatchSubstring)
	if len(got.Data) != 1 {
		t.Fatalf("len(Data) = %d, want 1 (errors: %v)", len(got.Data), got.Errors)
	}
	row := got.Data[0]
	if row.TaskCategory != "Audit" || row.SubCategory != "Quarterly" {
		t.Errorf("category/sub = %q/%q", row.TaskCategory, row.SubCategory)
	}
	if row.Status != "Done" || row.PaymentStatus != "Paid" || row.CaptainName != "Zed" {
		t.Errorf("row = %+v", row)
	}
}

func TestTaskTemplate(t *testing.T) {
	first := TaskTemplate()
	if first != TaskTemplate() {
		t.Fatal("TaskTemplate() not deterministic")
	}

	lines := strings.Split(first, "\n")
	if len(lines) != 2 {
		t.Fatalf("template has %d lines, want 2", len(lines))
	}
	if lines[0] != taskHeader {
		t.Errorf("header = %q\nwant     %q", lines[0], taskHeader)
	}

	got := ParseTaskCSV(first)
	if len(got.Data) != 1 || len(got.Errors) != 0 {
		t.Errorf("template does not parse cleanly: %+v", got)
	}
}

func TestNewTaskRow(t *testing.T) {
	row := NewTaskRow(TaskImportRow{Client: "ACME", Status: "Done"})
	if row.Status != "Done" {
		t.Errorf("Status = %q, want Done", row.Status)
	}
	if row.PaymentStatus != DefaultPaymentStatus {
		t.Errorf("PaymentStatus = %q, want %q", row.PaymentStatus, DefaultPaymentStatus)
	}
	if !row.DueDate.Equal(EpochZero) {
		t.Errorf("DueDate = %v, want EpochZero", row.DueDate)
	}
}
