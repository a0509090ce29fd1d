package rankingservice

import (
	"context"

	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
)

// ApplyConfirmedAttendance updates every scope the member belongs to. Scopes
// whose member attribute is unknown are skipped. A failing scope does not stop
// the others.
func (s *RankingService) ApplyConfirmedAttendance(ctx context.Context, att ConfirmedAttendance) AttendanceApplyResult {
	scopes := rankingdomain.ScopesFor(att.Member)
	out := AttendanceApplyResult{Scopes: make([]ScopeUpdate, 0, len(scopes))}

	for _, scope := range scopes {
		res := s.UpdateIncremental(ctx, att.TenantID, AttendanceConfirmedEvent{
			AttendanceID:  att.AttendanceID,
			MemberID:      att.MemberID,
			EventID:       att.EventID,
			Year:          att.Year,
			PointsAwarded: att.PointsAwarded,
			MilesRecorded: att.MilesRecorded,
			ScopeType:     scope.Type,
			ScopeID:       scope.ID,
			VisitorClass:  att.VisitorClass,
			ConfirmedAt:   att.ConfirmedAt,
		})
		if !res.Success {
			s.logger.WarnContext(ctx, "Scope update failed",
				attr.ExtractCorrelationID(ctx),
				attr.TenantID(att.TenantID),
				attr.UUID("attendance_id", att.AttendanceID),
				attr.String("scope", scope.String()),
				attr.String("message", res.Message),
			)
		}
		out.Scopes = append(out.Scopes, ScopeUpdate{Scope: scope, Result: res})
	}
	return out
}
