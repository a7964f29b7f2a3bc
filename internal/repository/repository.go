// Package repository stores the services' data in PostgreSQL.
package repository

import "github.com/paulexconde/vaxreview/internal/services"

var (
	_ services.UserRepository    = (*UserRepository)(nil)
	_ services.SurveyRepository  = (*SurveyRepository)(nil)
	_ services.ReviewRepository  = (*ReviewRepository)(nil)
	_ services.CommentRepository = (*CommentRepository)(nil)
	_ services.LikeRepository    = (*LikeRepository)(nil)
	_ services.InquiryRepository = (*InquiryRepository)(nil)
)
