package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/utils"
)

// StatementService turns an uploaded bank statement into an income/expense
// digest. Failures are *utils.AppError values whose Message is fit for the
// user.
type StatementService interface {
	Summarize(filename string, data []byte, password string) (*dtos.StatementSummary, error)
}

type statementService struct {
	defaultPassword string
}

// NewStatementService uses defaultPassword when the upload carries none.
func NewStatementService(defaultPassword string) StatementService {
	return &statementService{defaultPassword: defaultPassword}
}

var allowedStatementExt = map[string]bool{".pdf": true, ".xlsx": true, ".csv": true, ".txt": true}

func (s *statementService) Summarize(filename string, data []byte, password string) (*dtos.StatementSummary, error) {
	if filename == "" {
		return nil, utils.NewAppError(utils.ErrInvalidUpload, "Please choose a PDF file.")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedStatementExt[ext] {
		return nil, utils.NewAppError(utils.ErrInvalidUpload,
			fmt.Sprintf("Unsupported file type %q. Upload a PDF, XLSX, CSV or TXT statement.", ext))
	}
	if len(data) > constants.MaxStatementUploadBytes {
		return nil, utils.NewAppError(utils.ErrInvalidUpload,
			fmt.Sprintf("File too large: %.1f MB (max %d MB).",
				float64(len(data))/(1<<20), constants.MaxStatementUploadBytes>>20))
	}
	if password == "" {
		password = s.defaultPassword
	}

	text, err := ExtractStatementText(ext, data, password)
	if err != nil {
		utils.Logger.WithError(err).WithField("file", filename).Warn("Statement extraction failed")
	}
	if strings.TrimSpace(text) == "" {
		return nil, utils.NewAppError(utils.ErrInvalidUpload,
			"Could not extract text. Check password or PDF type (scanned PDFs may need OCR).")
	}

	sum := SummarizeText(text)
	utils.Logger.WithField("file", filename).Infof("Summarized statement: %d income, %d expense entries",
		sum.IncomeEntries, sum.ExpenseEntries)
	return &sum, nil
}

// ExtractStatementText returns the plain text of a statement. ext includes
// the leading dot.
func ExtractStatementText(ext string, data []byte, password string) (string, error) {
	switch ext {
	case ".pdf":
		return pdfText(data, password)
	case ".xlsx":
		return xlsxText(data, password)
	case ".csv", ".txt":
		return string(data), nil
	}
	return "", fmt.Errorf("unsupported extension %q", ext)
}

func pdfText(data []byte, password string) (string, error) {
	tried := false
	pw := func() string {
		if tried {
			return ""
		}
		tried = true
		return password
	}
	r, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), pw)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func xlsxText(data []byte, password string) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{Password: password})
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, " "))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

var (
	amountRe = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

	incomeRe  = keywordRe("rent", "lodge", "receipt", "income", "revenue", "advance", "deposit", "roombooking", "roombook")
	expenseRe = keywordRe("electricity", "maintenance", "salary", "expense", "payment", "outflow", "tax", "water", "rentpaid")
)

func keywordRe(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)
}

// SummarizeText classifies every line that carries a rupee amount. Income
// keywords win over expense keywords; lines matching neither are ignored.
func SummarizeText(text string) dtos.StatementSummary {
	var out dtos.StatementSummary
	for _, line := range strings.Split(text, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		matches := amountRe.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			continue
		}
		amount := 0.0
		for _, m := range matches {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err == nil {
				amount += v
			}
		}

		switch {
		case incomeRe.MatchString(line):
			out.IncomeTotal += amount
			out.IncomeEntries++
		case expenseRe.MatchString(line):
			out.ExpenseTotal += amount
			out.ExpenseEntries++
		}
	}
	out.IncomeTotal = utils.Round2(out.IncomeTotal)
	out.ExpenseTotal = utils.Round2(out.ExpenseTotal)
	out.Net = utils.Round2(out.IncomeTotal - out.ExpenseTotal)
	return out
}
