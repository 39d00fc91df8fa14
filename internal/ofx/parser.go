// Package ofx reads spends out of OFX/QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/roundup/internal/document"
	"github.com/aclindsa/ofxgo"
)

// DateLayout is how posted dates are written into request documents.
const DateLayout = "2006-01-02 15:04:05"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML tags on their own line that lost their closing bracket
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Spend is a single debit from a statement.
type Spend struct {
	Posted    time.Time
	FITID     string
	AccountID string
	Amount    float64 // always positive
}

// Transaction converts the spend to its request form, dated in UTC.
func (s Spend) Transaction() document.Transaction {
	return document.Transaction{
		Date:   s.Posted.UTC().Format(DateLayout),
		Amount: s.Amount,
	}
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile returns every debit in the bank and credit card statements of an
// OFX file. Credits are skipped since only spends are rounded up.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Spend, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var spends []Spend
	var credits int

	collect := func(list *ofxgo.TransactionList, accountID string) {
		if list == nil {
			return
		}
		for _, tx := range list.Transactions {
			s, ok := convertTransaction(tx, accountID)
			if !ok {
				credits++
				continue
			}
			spends = append(spends, s)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			collect(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			collect(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))
		}
	}

	slog.DebugContext(ctx, "Parsed OFX file",
		"spends", len(spends),
		"credits_skipped", credits)

	return spends, nil
}

// convertTransaction returns the spend for a debit; ok is false for credits.
func convertTransaction(tx ofxgo.Transaction, accountID string) (Spend, bool) {
	// TrnAmt is a big.Rat; debits are negative
	amount, _ := tx.TrnAmt.Float64()
	if amount >= 0 {
		return Spend{}, false
	}

	return Spend{
		FITID:     string(tx.FiTID),
		AccountID: accountID,
		Posted:    tx.DtPosted.Time,
		Amount:    -amount,
	}, true
}

// Accounts extracts the unique account IDs of an OFX file.
func (p *Parser) Accounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}
