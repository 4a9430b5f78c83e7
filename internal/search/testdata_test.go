package search

import "github.com/pders01/reel/internal/storage"

func sampleVideos() []*storage.Video {
	return []*storage.Video{
		{ID: 1, Username: "mountain_mia", Description: "Sunrise hike above the clouds", Topic: "travel"},
		{ID: 2, Username: "chef_leo", Description: "Three minute pasta carbonara", Topic: "food"},
		{ID: 3, Username: "skate_sam", Description: "Kickflip practice at the park", Topic: "sports"},
		{ID: 4, Username: "travel_tom", Description: "Night market street food tour", Topic: "food"},
	}
}
