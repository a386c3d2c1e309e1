package assets

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/assetbuilder/internal/fontconv"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
)

// ConvertFonts emits .ttf, .eot and .woff renditions of every TrueType based
// font. Fonts with CFF outlines keep their .otf container and get .woff only.
// Formats that cannot be unwrapped (woff2, collections, svg fonts) pass
// through unchanged.
func ConvertFonts() Transform {
	return func(ctx context.Context, f *File) ([]*File, error) {
		switch fontconv.Detect(f.Contents) {
		case fontconv.FormatTrueType, fontconv.FormatOpenType, fontconv.FormatWOFF, fontconv.FormatEOT:
		default:
			return []*File{f}, nil
		}

		font, err := fontconv.Decode(f.Contents)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTransform, "failed to read font").
				WithContext("path", f.Origin).Build()
		}

		formats := []fontconv.Format{fontconv.FormatTrueType, fontconv.FormatEOT, fontconv.FormatWOFF}
		if !font.IsTrueType() {
			formats = []fontconv.Format{fontconv.FormatOpenType, fontconv.FormatWOFF}
			observability.Logger(ctx).Debug("CFF font, skipping ttf and eot", logfields.Path(f.Origin))
		}

		out := make([]*File, 0, len(formats))
		for _, format := range formats {
			data, err := fontconv.Encode(font, format)
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryTransform, "font conversion failed").
					WithContext("path", f.Origin).WithContext("format", string(format)).Build()
			}
			out = append(out, f.Derive("", "."+string(format), data))
		}
		return out, nil
	}
}

// CompressWOFF2 replaces .ttf and .otf files by their WOFF2 rendition. Other
// files pass through.
func CompressWOFF2() Transform {
	return func(ctx context.Context, f *File) ([]*File, error) {
		if ext := f.Ext(); ext != ".ttf" && ext != ".otf" {
			return []*File{f}, nil
		}
		font, err := fontconv.ParseSFNT(f.Contents)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTransform, "failed to read font").
				WithContext("path", f.Origin).Build()
		}
		data, err := fontconv.ToWOFF2(font)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTransform, "woff2 compression failed").
				WithContext("path", f.Origin).Build()
		}
		observability.Logger(ctx).Debug("WOFF2 written", logfields.Path(f.Origin),
			slog.Int("bytes", len(data)), slog.Int("source_bytes", len(f.Contents)))
		return []*File{f.Derive("", ".woff2", data)}, nil
	}
}
