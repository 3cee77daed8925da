package tilemap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/paulmach/orb/maptile"
)

// s3Remote fetches tiles from an S3 bucket addressed by an
// s3://bucket/{z}/{x}/{y} style key template, for tile sets published as
// open data rather than behind a tile server.
type s3Remote struct {
	downloader  *s3manager.Downloader
	bucket      string
	keyTemplate string
}

func newS3Remote(source Source) (*s3Remote, error) {
	bucket, keyTemplate, err := source.S3Location()
	if err != nil {
		return nil, err
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}

	return &s3Remote{
		downloader:  s3manager.NewDownloader(sess),
		bucket:      bucket,
		keyTemplate: keyTemplate,
	}, nil
}

func (r *s3Remote) fetch(ctx context.Context, t maptile.Tile) ([]byte, error) {
	key := strings.NewReplacer(
		"{x}", fmt.Sprintf("%d", t.X),
		"{y}", fmt.Sprintf("%d", t.Y),
		"{z}", fmt.Sprintf("%d", t.Z)).Replace(r.keyTemplate)

	buf := aws.NewWriteAtBuffer([]byte{})

	_, err := r.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
