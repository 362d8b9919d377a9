package service

import (
	"slices"

	domain "github.com/haythamforever/HonorHub/internal/certificates/domain"
)

type itemOutcome struct {
	index   int
	spec    domain.IssueSpec
	created domain.Created
	stage   string
	err     error
}

// foldBulk reduces per-item outcomes into the batch summary. The returned
// slices are clipped so appends by callers never alias the fold's storage.
func foldBulk(outcomes []itemOutcome) domain.BulkResult {
	res := domain.BulkResult{
		Certificates: make([]domain.BulkCreated, 0, len(outcomes)),
		Errors:       []domain.BulkItemError{},
	}
	for _, o := range outcomes {
		if o.err != nil {
			res.Failed++
			res.Errors = append(res.Errors, domain.BulkItemError{
				Index: o.index,
				Spec:  o.spec,
				Stage: o.stage,
				Error: o.err.Error(),
			})
			continue
		}
		res.Success++
		res.Certificates = append(res.Certificates, domain.BulkCreated{
			ID:            o.created.ID,
			CertificateID: o.created.CertificateID,
			EmployeeName:  o.created.EmployeeName,
			EmailSent:     o.created.EmailSent,
		})
	}
	res.Certificates = slices.Clip(res.Certificates)
	res.Errors = slices.Clip(res.Errors)
	return res
}
