// internal/domain/models/question.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vote types.
const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// Vote is one profile's vote on a question or answer.
type Vote struct {
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	VoteType  string             `bson:"vote_type" json:"vote_type"`
}

// Question is a Q&A thread.
type Question struct {
	ID         primitive.ObjectID   `bson:"_id" json:"id"`
	Title      string               `bson:"title" json:"title"`
	Body       string               `bson:"body" json:"body"`
	Tags       []string             `bson:"tags" json:"tags"`
	AuthorID   primitive.ObjectID   `bson:"author_id" json:"author_id"`
	Votes      []Vote               `bson:"votes" json:"votes"`
	TotalVotes int                  `bson:"total_votes" json:"total_votes"`
	Answers    []primitive.ObjectID `bson:"answers" json:"answers"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Answer replies to a Question.
type Answer struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	QuestionID primitive.ObjectID `bson:"question_id" json:"question_id"`
	Body       string             `bson:"body" json:"body"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	Votes      []Vote             `bson:"votes" json:"votes"`
	TotalVotes int                `bson:"total_votes" json:"total_votes"`
	IsAccepted bool               `bson:"is_accepted" json:"is_accepted"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ApplyVote toggles or flips profileID's vote and returns the new vote list
// and its up-minus-down total. Casting the same vote twice removes it.
func ApplyVote(votes []Vote, profileID primitive.ObjectID, voteType string) ([]Vote, int) {
	out := make([]Vote, 0, len(votes)+1)
	found := false
	for _, v := range votes {
		if v.ProfileID != profileID {
			out = append(out, v)
			continue
		}
		found = true
		if v.VoteType != voteType {
			out = append(out, Vote{ProfileID: profileID, VoteType: voteType})
		}
	}
	if !found {
		out = append(out, Vote{ProfileID: profileID, VoteType: voteType})
	}
	return out, TallyVotes(out)
}

// TallyVotes returns upvotes minus downvotes.
func TallyVotes(votes []Vote) int {
	total := 0
	for _, v := range votes {
		switch v.VoteType {
		case VoteUp:
			total++
		case VoteDown:
			total--
		}
	}
	return total
}
