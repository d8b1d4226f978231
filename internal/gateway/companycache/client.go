// Package companycache talks to the company cache service, the
// in-memory source of truth for member records and client sessions of
// one company.
package companycache

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/workroomhq/appkit/internal/logging"
	"github.com/workroomhq/appkit/internal/shared"
)

// companyIDHeader routes a call to the right company on a shared cache
// instance.
const companyIDHeader = "x-company-id"

// Service status codes outside the standard grpc range.
const (
	statusCodeDatabaseError   = 500
	statusCodeSessionNotFound = 902
)

const serviceName = "/company_cache.CompanyCache/"

// Client is a thin wrapper over the cache service connection, bound to
// one company.
type Client struct {
	conn      *grpc.ClientConn
	companyID int64
	logger    logging.Logger

	// invoke is a seam for testing without a live connection.
	invoke func(ctx context.Context, method string, req, reply any, opts ...grpc.CallOption) error
}

func NewClient(addr string, companyID int64, logger logging.Logger) (*Client, error) {
	c := &Client{companyID: companyID, logger: logger}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.companyIDInterceptor),
	)
	if err != nil {
		return nil, fmt.Errorf("company cache dial error: %w", err)
	}

	c.conn = conn
	c.invoke = conn.Invoke
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func withCompanyID(ctx context.Context, companyID int64) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy() // Copy of a nil MD is a non-nil empty MD
	md.Delete(companyIDHeader)
	md.Set(companyIDHeader, strconv.FormatInt(companyID, 10))

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) companyIDInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withCompanyID(ctx, c.companyID), method, req, reply, cc, opts...)
}

func (c *Client) call(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	fields["company_id"] = c.companyID

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("request encode error: %w", err)
	}

	reply := &structpb.Struct{}
	if err := c.invoke(ctx, serviceName+method, req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// SessionGetInfo resolves a session uniq into the member holding it,
// plus the session's extra payload. A session the cache does not know
// reports shared.ErrSessionNotFound.
func (c *Client) SessionGetInfo(ctx context.Context, sessionUniq string) (*Member, map[string]any, error) {
	reply, err := c.call(ctx, "SessionGetInfo", map[string]any{
		"session_uniq": sessionUniq,
	})
	if err != nil {
		return nil, nil, c.mapError(ctx, "SessionGetInfo", err)
	}

	member := memberFromStruct(reply.Fields["member"].GetStructValue())
	if member == nil {
		return nil, nil, fmt.Errorf("%w: empty member in reply", shared.ErrBusUnavailable)
	}

	var extra map[string]any
	if s := reply.Fields["extra"].GetStructValue(); s != nil {
		extra = s.AsMap()
	}
	return member, extra, nil
}

// SessionDeleteByUserID drops every cached session of the user.
func (c *Client) SessionDeleteByUserID(ctx context.Context, userID int64) error {
	_, err := c.call(ctx, "SessionDeleteByUserId", map[string]any{
		"user_id": userID,
	})
	if err != nil {
		return c.mapError(ctx, "SessionDeleteByUserId", err)
	}
	return nil
}

// SessionListByUserID returns the uniqs of the user's live sessions.
func (c *Client) SessionListByUserID(ctx context.Context, userID int64) ([]string, error) {
	reply, err := c.call(ctx, "SessionGetListByUserId", map[string]any{
		"user_id": userID,
	})
	if err != nil {
		return nil, c.mapError(ctx, "SessionGetListByUserId", err)
	}

	var uniqs []string
	for _, v := range reply.Fields["session_uniq_list"].GetListValue().GetValues() {
		uniqs = append(uniqs, v.GetStringValue())
	}
	return uniqs, nil
}

// MemberDeleteFromCacheByUserID evicts the user's member record so the
// next read refills it from the database.
func (c *Client) MemberDeleteFromCacheByUserID(ctx context.Context, userID int64) error {
	_, err := c.call(ctx, "MemberDeleteFromCacheByUserId", map[string]any{
		"user_id": userID,
	})
	if err != nil {
		return c.mapError(ctx, "MemberDeleteFromCacheByUserId", err)
	}
	return nil
}

// MemberGetList resolves member records for a batch of user ids, keyed
// by user id. Unknown ids are absent from the result.
func (c *Client) MemberGetList(ctx context.Context, userIDs []int64) (map[int64]*Member, error) {
	list := make([]any, 0, len(userIDs))
	for _, id := range userIDs {
		list = append(list, id)
	}

	reply, err := c.call(ctx, "MemberGetList", map[string]any{
		"user_id_list": list,
	})
	if err != nil {
		return nil, c.mapError(ctx, "MemberGetList", err)
	}

	members := make(map[int64]*Member)
	for _, v := range reply.Fields["member_list"].GetListValue().GetValues() {
		if m := memberFromStruct(v.GetStructValue()); m != nil {
			members[m.UserID] = m
		}
	}
	return members, nil
}

// mapError folds a transport error into the shared taxonomy. The
// service reports its own codes above the standard grpc range.
func (c *Client) mapError(ctx context.Context, method string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %s: %v", shared.ErrBusUnavailable, method, err)
	}

	switch uint32(st.Code()) {
	case statusCodeSessionNotFound:
		return shared.ErrSessionNotFound
	case statusCodeDatabaseError:
		c.logger.Error(ctx, "company cache database error", "method", method, "company_id", c.companyID)
		return fmt.Errorf("%w: database error in %s", shared.ErrBusUnavailable, method)
	default:
		return fmt.Errorf("%w: %s code %d", shared.ErrBusUnavailable, method, st.Code())
	}
}
