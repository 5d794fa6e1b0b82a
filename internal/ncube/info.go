package ncube

import "time"

// ChangeType classifies a branch change relative to HEAD.
type ChangeType string

const (
	ChangeCreated  ChangeType = "created"
	ChangeUpdated  ChangeType = "updated"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRestored ChangeType = "restored"
)

// CubeInfo is the revision record of one cube at one coordinate.
type CubeInfo struct {
	AppID      *ApplicationID `json:"appId"`
	Name       string         `json:"name"`
	Revision   int64          `json:"revision"`
	Sha1       string         `json:"sha1"`
	HeadSha1   string         `json:"headSha1,omitempty"`
	Deleted    bool           `json:"deleted"`
	Changed    bool           `json:"changed"`
	Notes      string         `json:"notes,omitempty"`
	Author     string         `json:"author,omitempty"`
	TxID       string         `json:"txId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	ChangeType ChangeType     `json:"changeType,omitempty"`
}

// Active reports whether the record is a live, non-deleted cube.
func (i *CubeInfo) Active() bool { return i != nil && !i.Deleted }
