package handlers

import (
	"context"
	"reflect"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// S3Object is a file-like reference to a single S3 object: bucket, key,
// and region, plus the *s3.Client it was resolved with. The SDK has no
// handle type for "this one object" the way *os.File stands for a local
// file, so this is the engine's own stand-in, serializable like any other
// file-like value.
type S3Object struct {
	Bucket string
	Key    string
	Region string
	Client *s3.Client
}

var s3ObjectType = reflect.TypeOf((*S3Object)(nil))

// S3Credentials is the shape an AuthMap entry supplies to an S3Object's
// Reconnector: static access key credentials for the reopened client, or
// a profile name to resolve them from the environment instead.
type S3Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
}

// S3Handler is the tier-3 handler for *S3Object. Registry.TierSpecial.
// Extract never touches credentials — those live only on the *s3.Client a
// Reconnector builds fresh from the auth map, matching the "secrets never
// enter the wire format" property the rest of the reconnect family holds
// to.
type S3Handler struct{}

func (S3Handler) Name() string { return "s3object" }

func (S3Handler) TypeKey(v reflect.Value) ir.TypeKey { return "suitkaise.S3Object" }

func (S3Handler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == s3ObjectType && !v.IsNil()
}

func (S3Handler) Handles(typeKey ir.TypeKey) bool { return typeKey == "suitkaise.S3Object" }

func (S3Handler) Extract(v reflect.Value) (registry.State, error) {
	obj, ok := v.Interface().(*S3Object)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "s3 handler received a nil *S3Object")
	}
	state := registry.NewRecordState(3)
	state.Set("bucket", obj.Bucket)
	state.Set("key", obj.Key)
	state.Set("region", obj.Region)
	return state, nil
}

func (S3Handler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &s3Reconnector{}, nil
}

func (S3Handler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*s3Reconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "s3 handler cannot populate a shell of this type")
	}
	r.bucket, _ = resolved.Fields["bucket"].(string)
	r.key, _ = resolved.Fields["key"].(string)
	r.region, _ = resolved.Fields["region"].(string)
	return nil
}

type s3Reconnector struct {
	bucket, key, region string
}

func (r *s3Reconnector) ReconnectTypeKey() string { return "suitkaise.S3Object" }

func (r *s3Reconnector) Reconnect(auth any) (any, error) {
	ctx := context.Background()
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(r.region)}

	if creds, ok := auth.(S3Credentials); ok {
		if creds.Profile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(creds.Profile))
		} else if creds.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
			))
		}
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = r.region
	})

	return &S3Object{Bucket: r.bucket, Key: r.key, Region: r.region, Client: client}, nil
}
