// =============================================================================
// Tally Sales XML - Voucher Builder
// =============================================================================
//
// This module turns invoice line records into the element tree of a Tally
// "Import Data" envelope. One Sales voucher is produced per invoice number.
//
// OUTPUT STRUCTURE:
//
//   <ENVELOPE>
//     <HEADER><TALLYREQUEST>Import Data</TALLYREQUEST></HEADER>
//     <BODY>
//       <IMPORTDATA>
//         <REQUESTDESC>
//           <REPORTNAME>Vouchers</REPORTNAME>
//           <STATICVARIABLES><SVCURRENTCOMPANY>...</SVCURRENTCOMPANY></STATICVARIABLES>
//         </REQUESTDESC>
//         <REQUESTDATA>
//           <TALLYMESSAGE>                <!-- one per invoice number -->
//             <VOUCHER VCHTYPE="Sales" ACTION="Create" OBJVIEW="Accounting Voucher View">
//               <DATE/> <VOUCHERTYPENAME/> <VOUCHERNUMBER/> <PARTYLEDGERNAME/>
//               <STATENAME/> <COUNTRYOFRESIDENCE/>
//               <ALLLEDGERENTRIES.LIST/>   <!-- party credit -->
//               <ALLLEDGERENTRIES.LIST/>   <!-- per row: item debit, then taxes -->
//             </VOUCHER>
//           </TALLYMESSAGE>
//         </REQUESTDATA>
//       </IMPORTDATA>
//     </BODY>
//   </ENVELOPE>
//
// LEDGER ENTRIES:
//   1. Party ledger, ISDEEMEDPOSITIVE=Yes, AMOUNT = -(sum of taxable value
//      and all taxes over every row of the invoice).
//   2. For each row, in order:
//      a. Item ledger, ISDEEMEDPOSITIVE=No, AMOUNT = taxable value.
//      b. IGST > 0: one IGST entry.
//         Otherwise: one CGST and one SGST entry from the row's Cgst/Sgst,
//         whether or not those columns are filled in.
//
// The builder never fails. Missing or non-numeric amounts render as NaN and
// missing text fields render empty; strict checking lives in the validation
// package.
//
// =============================================================================

package voucher

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/tally-sales-xml/internal/types"
	"github.com/ginjaninja78/tally-sales-xml/internal/xmlwriter"
)

// =============================================================================
// ELEMENT NAMES AND FIXED VALUES
// =============================================================================

const (
	ElemEnvelope       = "ENVELOPE"
	ElemTallyMessage   = "TALLYMESSAGE"
	ElemVoucher        = "VOUCHER"
	ElemLedgerEntry    = "ALLLEDGERENTRIES.LIST"
	ElemLedgerName     = "LEDGERNAME"
	ElemDeemedPositive = "ISDEEMEDPOSITIVE"
	ElemAmount         = "AMOUNT"

	// PathRequestData locates the voucher container from the envelope.
	PathRequestData = "BODY/IMPORTDATA/REQUESTDATA"

	LedgerIGST = "IGST"
	LedgerCGST = "CGST"
	LedgerSGST = "SGST"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds the values the envelope does not take from the sheet.
type Settings struct {
	// CompanyName goes into SVCURRENTCOMPANY.
	// Default: "Your Company Name"
	CompanyName string

	// Country goes into COUNTRYOFRESIDENCE on every voucher.
	// Default: "India"
	Country string
}

// DefaultSettings returns the settings that reproduce the stock output.
func DefaultSettings() Settings {
	return Settings{
		CompanyName: "Your Company Name",
		Country:     "India",
	}
}

// withDefaults fills empty fields from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.CompanyName == "" {
		s.CompanyName = d.CompanyName
	}
	if s.Country == "" {
		s.Country = d.Country
	}
	return s
}

// =============================================================================
// BUILDER
// =============================================================================

// Build assembles the import envelope for records.
//
// RETURNS:
//   - nil when records is empty; there is nothing to import.
//   - The ENVELOPE element otherwise.
func Build(records []types.Record, settings Settings) *xmlwriter.Element {
	if len(records) == 0 {
		return nil
	}
	settings = settings.withDefaults()

	envelope := xmlwriter.New(ElemEnvelope)
	envelope.Append(xmlwriter.New("HEADER").Leaf("TALLYREQUEST", "Import Data"))

	requestDesc := xmlwriter.New("REQUESTDESC").Leaf("REPORTNAME", "Vouchers")
	requestDesc.Append(xmlwriter.New("STATICVARIABLES").Leaf("SVCURRENTCOMPANY", settings.CompanyName))

	requestData := xmlwriter.New("REQUESTDATA")
	for _, group := range GroupByInvoice(records) {
		requestData.Append(xmlwriter.New(ElemTallyMessage).Append(BuildVoucher(group, settings)))
	}

	importData := xmlwriter.New("IMPORTDATA").Append(requestDesc, requestData)
	envelope.Append(xmlwriter.New("BODY").Append(importData))

	return envelope
}

// BuildVoucher assembles the VOUCHER element for one invoice.
// Header fields come from the group's first record only.
func BuildVoucher(group Group, settings Settings) *xmlwriter.Element {
	settings = settings.withDefaults()
	first := group.First()
	party := first.Get(types.ColPartyName).String()

	voucher := xmlwriter.New(ElemVoucher).
		Attr("VCHTYPE", "Sales").
		Attr("ACTION", "Create").
		Attr("OBJVIEW", "Accounting Voucher View")

	// Invoice Date is expected as YYYYMMDD already and is copied as-is.
	voucher.Leaf("DATE", first.Get(types.ColInvoiceDate).String())
	voucher.Leaf("VOUCHERTYPENAME", "Sales")
	voucher.Leaf("VOUCHERNUMBER", group.Key)
	voucher.Leaf("PARTYLEDGERNAME", party)
	voucher.Leaf("STATENAME", first.Get(types.ColPlaceOfSupply).String())
	voucher.Leaf("COUNTRYOFRESIDENCE", settings.Country)

	voucher.Append(ledgerEntry(party, true, InvoiceTotal(group.Records).Neg()))

	for _, record := range group.Records {
		voucher.Append(ledgerEntry(
			record.Get(types.ColItem).String(),
			false,
			Required(record.Get(types.ColTaxableValue)),
		))

		igst := Optional(record.Get(types.ColIGST))
		if igst.IsPositive() {
			voucher.Append(ledgerEntry(LedgerIGST, false, igst))
			continue
		}

		voucher.Append(ledgerEntry(LedgerCGST, false, Required(record.Get(types.ColCGST))))
		voucher.Append(ledgerEntry(LedgerSGST, false, Required(record.Get(types.ColSGST))))
	}

	return voucher
}

// InvoiceTotal sums taxable value plus IGST, CGST and SGST over records.
// Absent taxes count as zero; an absent taxable value makes the total NaN.
func InvoiceTotal(records []types.Record) Amount {
	total := NewAmount(decimal.Zero)
	for _, record := range records {
		total = total.
			Add(Required(record.Get(types.ColTaxableValue))).
			Add(Optional(record.Get(types.ColIGST))).
			Add(Optional(record.Get(types.ColCGST))).
			Add(Optional(record.Get(types.ColSGST)))
	}
	return total
}

// ledgerEntry builds one ALLLEDGERENTRIES.LIST element.
func ledgerEntry(ledger string, deemedPositive bool, amount Amount) *xmlwriter.Element {
	flag := "No"
	if deemedPositive {
		flag = "Yes"
	}
	return xmlwriter.New(ElemLedgerEntry).
		Leaf(ElemLedgerName, ledger).
		Leaf(ElemDeemedPositive, flag).
		Leaf(ElemAmount, amount.Format())
}

// =============================================================================
// SUMMARY
// =============================================================================

// Count reports how many vouchers and ledger entries an envelope holds.
func Count(envelope *xmlwriter.Element) (vouchers, ledgerEntries int) {
	requestData := envelope.Find(PathRequestData)
	if requestData == nil {
		return 0, 0
	}
	for _, message := range requestData.ChildrenNamed(ElemTallyMessage) {
		for _, v := range message.ChildrenNamed(ElemVoucher) {
			vouchers++
			ledgerEntries += len(v.ChildrenNamed(ElemLedgerEntry))
		}
	}
	return vouchers, ledgerEntries
}
