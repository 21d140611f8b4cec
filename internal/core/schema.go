package core

import (
	"fmt"
	"strings"
)

// FieldType represents the expected data type for a source column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldCode
	FieldInt
	FieldNumeric
	FieldDate
)

// FieldSpec describes one positional column of the enrollment file.
type FieldSpec struct {
	Header string    // Header as published in the source file
	Label  string    // Domain label the column is renamed to
	Type   FieldType // Expected data type
	Drop   bool      // Administrative column discarded after renaming
	Anchor bool      // Header must contain Header; guards against shifted layouts
}

// Column positions in the source file. The file carries no schema version,
// so the order below is the contract.
const (
	colGeneratedMonth = iota
	colName
	colBusinessRegNo
	colStatus
	colPostalCode
	colLotAddress
	colAddress
	colLegalDongCode
	colAdminDongCode
	colSidoCode
	colSigunguCode
	colEupmyeondongCode
	colEmployerType
	colIndustryCode
	colIndustryName
	colAppliedDate
	colReregisteredDate
	colWithdrawalDate
	colEnrollees
	colAmount
	colNewEnrollments
	colLosses

	columnCount
)

// Schema is the positional layout of the enrollment file.
var Schema = [columnCount]FieldSpec{
	colGeneratedMonth:   {Header: "자료생성년월", Label: "generated_month", Type: FieldText, Drop: true},
	colName:             {Header: "사업장명", Label: "name", Type: FieldText, Anchor: true},
	colBusinessRegNo:    {Header: "사업자등록번호", Label: "business_reg_no", Type: FieldCode},
	colStatus:           {Header: "사업장가입상태코드 1 등록 2 탈퇴", Label: "status", Type: FieldCode},
	colPostalCode:       {Header: "우편번호", Label: "postal_code", Type: FieldCode, Drop: true},
	colLotAddress:       {Header: "사업장지번상세주소", Label: "lot_address", Type: FieldText, Drop: true},
	colAddress:          {Header: "사업장도로명상세주소", Label: "address", Type: FieldText},
	colLegalDongCode:    {Header: "고객법정동주소코드", Label: "legal_dong_code", Type: FieldCode, Drop: true},
	colAdminDongCode:    {Header: "고객행정동주소코드", Label: "admin_dong_code", Type: FieldCode, Drop: true},
	colSidoCode:         {Header: "법정동주소광역시도코드", Label: "sido_code", Type: FieldCode},
	colSigunguCode:      {Header: "법정동주소광역시시군구코드", Label: "sigungu_code", Type: FieldCode},
	colEupmyeondongCode: {Header: "법정동주소광역시시군구읍면동코드", Label: "eupmyeondong_code", Type: FieldCode},
	colEmployerType:     {Header: "사업장형태구분코드 1 법인 2 개인", Label: "employer_type", Type: FieldCode, Drop: true},
	colIndustryCode:     {Header: "업종코드", Label: "industry_code", Type: FieldInt, Anchor: true},
	colIndustryName:     {Header: "업종코드명", Label: "industry_name", Type: FieldText, Anchor: true},
	colAppliedDate:      {Header: "적용일자", Label: "applied_date", Type: FieldDate, Drop: true},
	colReregisteredDate: {Header: "재등록일자", Label: "reregistered_date", Type: FieldDate, Drop: true},
	colWithdrawalDate:   {Header: "탈퇴일자", Label: "withdrawal_date", Type: FieldDate},
	colEnrollees:        {Header: "가입자수", Label: "enrollees", Type: FieldInt, Anchor: true},
	colAmount:           {Header: "금액", Label: "amount", Type: FieldNumeric, Anchor: true},
	colNewEnrollments:   {Header: "신규취득자수", Label: "new_enrollments", Type: FieldInt},
	colLosses:           {Header: "상실가입자수", Label: "losses", Type: FieldInt},
}

// ColumnCount is the number of columns every row of the source file must have.
const ColumnCount = columnCount

// SourceHeader returns the header row as published in the source file.
func SourceHeader() []string {
	header := make([]string, columnCount)
	for i, spec := range Schema {
		header[i] = spec.Header
	}
	return header
}

// DroppedLabels returns the labels of administrative columns removed by the pipeline.
func DroppedLabels() []string {
	var labels []string
	for _, spec := range Schema {
		if spec.Drop {
			labels = append(labels, spec.Label)
		}
	}
	return labels
}

// ValidateHeader checks the column count and the anchor columns of a header row.
// A shifted or truncated layout would silently mislabel every derived field,
// so any mismatch is reported as ErrSchemaMismatch.
func ValidateHeader(header []string) error {
	if len(header) != columnCount {
		return fmt.Errorf("%w: header has %d columns, want %d", ErrSchemaMismatch, len(header), columnCount)
	}

	var mismatched []string
	for i, spec := range Schema {
		if !spec.Anchor {
			continue
		}
		got := strings.TrimSpace(header[i])
		if !strings.Contains(got, spec.Header) {
			mismatched = append(mismatched, fmt.Sprintf("column %d is %q, want %q", i+1, got, spec.Header))
		}
	}

	if len(mismatched) > 0 {
		return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(mismatched, "; "))
	}
	return nil
}
