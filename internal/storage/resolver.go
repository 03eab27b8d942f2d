package storage

import (
	"context"

	"github.com/google/uuid"
)

// ReportVideoResolver resolves a report to the public URLs of its video
// objects, in slot order. Satisfies the analysis package's ReportResolver.
type ReportVideoResolver struct {
	db         *PostgresStore
	bucket     string
	publicBase string
}

func NewReportVideoResolver(db *PostgresStore, bucket, publicBase string) *ReportVideoResolver {
	return &ReportVideoResolver{db: db, bucket: bucket, publicBase: publicBase}
}

// VideoRefsForReport returns nil (no error) for an unknown report; a report
// with no slots yields an empty non-nil slice.
func (r *ReportVideoResolver) VideoRefsForReport(ctx context.Context, reportID uuid.UUID) ([]string, error) {
	uploads, err := r.db.UploadsForReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if uploads == nil {
		return nil, nil
	}

	refs := make([]string, 0, len(uploads))
	for _, up := range uploads {
		key := VideoObjectKey(up.ReportID.String(), up.ID.String())
		refs = append(refs, PublicObjectURL(r.publicBase, r.bucket, key))
	}
	return refs, nil
}
