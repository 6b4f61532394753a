/*
go-faceveil detects faces in video files and composites an anonymizing
overlay over them.

Detection runs as a pipeline.  A single dispatcher reads decoded frames from
a FrameSource and places them, one at a time or in contiguous batches, on a
bounded work queue.  A pool of workers runs a Detector over each frame and
an aggregator restores frame order.  The result is a Sequence which records
if the run completed, was cancelled or stopped because the source failed.

Rendering lives in the render subpackage, persistence of detections in the
state subpackage and video decoding and encoding in the video subpackage.

See example/overlay for a command line tool tying these together.
*/
package faceveil
